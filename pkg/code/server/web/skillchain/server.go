package skillchain

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/bri1545/SkillChain/pkg/code/runtime"
	code_skillchain "github.com/bri1545/SkillChain/pkg/code/skillchain"
	"github.com/bri1545/SkillChain/pkg/rate"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
)

const (
	v1PathPrefix          = "/v1"
	v1SubmitPath          = "/submit"
	v1RegistryPath        = "/registry"
	v1ProfilePath         = "/profile/{owner}"
	v1ValidatorPath       = "/validator/{address}"
	v1EscrowPath          = "/escrow/{testId}"
	v1VerifySkillPath     = "/verify-skill"
	v1DaoStatsPath        = "/dao/stats"
	v1AddressPath         = "/address/{kind}"
	v1AddressWithKeyPath  = "/address/{kind}/{key}"
	v1AirdropPath         = "/airdrop"
	contentTypeHeaderName = "content-type"

	jsonContentTypeHeaderValue = "application/json"
)

var (
	errRateLimited = errors.New("rate limited")
)

type Server struct {
	log *logrus.Entry

	runtime *runtime.Runtime
	reader  *code_skillchain.Reader

	submitLimiter rate.Limiter
}

func NewSkillChainServer(rt *runtime.Runtime, reader *code_skillchain.Reader, submitLimiter rate.Limiter) *Server {
	return &Server{
		log:           logrus.StandardLogger().WithField("type", "skillchain/server"),
		runtime:       rt,
		reader:        reader,
		submitLimiter: submitLimiter,
	}
}

// Register mounts the v1 API on the router
func (s *Server) Register(r chi.Router) {
	r.Route(v1PathPrefix, func(r chi.Router) {
		r.Post(v1SubmitPath, s.submitHandler(v1SubmitPath))
		r.Get(v1RegistryPath, s.getRegistryHandler(v1RegistryPath))
		r.Get(v1ProfilePath, s.getProfileHandler(v1ProfilePath))
		r.Get(v1ValidatorPath, s.getValidatorHandler(v1ValidatorPath))
		r.Get(v1EscrowPath, s.getEscrowHandler(v1EscrowPath))
		r.Post(v1VerifySkillPath, s.verifySkillHandler(v1VerifySkillPath))
		r.Get(v1DaoStatsPath, s.getDaoStatsHandler(v1DaoStatsPath))
		r.Get(v1AddressPath, s.getAddressHandler(v1AddressPath))
		r.Get(v1AddressWithKeyPath, s.getAddressHandler(v1AddressWithKeyPath))
		r.Post(v1AirdropPath, s.airdropHandler(v1AirdropPath))
	})
}

// Router returns a standalone router serving the API
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

func (s *Server) submitHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.log.WithField("path", path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			model, err := newSubmitRequestFromHttpContext(r)
			if err != nil {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
			}

			instructionName := skillchain_program.GetInstructionType(model.instruction.Data).String()
			log = log.WithField("instruction", instructionName)

			// Signers are only trusted as a rate limit key once verified
			if err := runtime.VerifySignatures(model.instruction, model.signatures); err != nil {
				statusCode, err := HandleErrorInWebContext(err)
				return statusCode, NewGenericApiFailureResponseBody(err)
			}

			limitKey := r.RemoteAddr
			if signers := model.instruction.Signers(); len(signers) > 0 {
				limitKey = base58.Encode(signers[0])
			}

			allowed, err := s.submitLimiter.Allow(limitKey)
			if err != nil {
				log.WithError(err).Warn("failure checking rate limit")
			} else if !allowed {
				return http.StatusTooManyRequests, NewGenericApiFailureResponseBody(errRateLimited)
			}

			err = s.runtime.Execute(ctx, model.instruction, model.signatures)
			if err != nil {
				statusCode, err := HandleErrorInWebContext(err)
				if statusCode == http.StatusInternalServerError {
					log.WithError(err).Warn("failure executing instruction")
				}
				return statusCode, NewGenericApiFailureResponseBody(err)
			}

			respBody := NewGenericApiSuccessResponseBody()
			respBody["instruction"] = instructionName
			return http.StatusOK, respBody
		}()

		s.writeResponse(w, log, statusCode, body)
	}
}

func (s *Server) getRegistryHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.log.WithField("path", path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			registry, err := s.reader.GetRegistry(ctx)
			if err != nil {
				return s.handleReadError(log, err)
			}

			respBody := NewGenericApiSuccessResponseBody()
			respBody["pda"] = base58.Encode(registry.Address)
			respBody["program_id"] = base58.Encode(skillchain_program.PROGRAM_ID)
			respBody["registry"] = toRegistryView(registry.Account)
			return http.StatusOK, respBody
		}()

		s.writeResponse(w, log, statusCode, body)
	}
}

func (s *Server) getProfileHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.log.WithField("path", path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			owner, err := decodePublicKey(chi.URLParam(r, "owner"))
			if err != nil {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("owner is not a public key"))
			}
			log = log.WithField("owner", base58.Encode(owner))

			address, _, err := skillchain_program.GetUserProfileAddress(&skillchain_program.GetUserProfileAddressArgs{
				Owner: owner,
			})
			if err != nil {
				return s.handleReadError(log, err)
			}

			respBody := NewGenericApiSuccessResponseBody()
			respBody["pda"] = base58.Encode(address)

			profile, err := s.reader.GetUserProfile(ctx, owner)
			if err == code_skillchain.ErrAccountNotFound {
				respBody["exists"] = false
				return http.StatusOK, respBody
			} else if err != nil {
				return s.handleReadError(log, err)
			}

			respBody["exists"] = true
			respBody["profile"] = toUserProfileView(profile)
			return http.StatusOK, respBody
		}()

		s.writeResponse(w, log, statusCode, body)
	}
}

func (s *Server) getValidatorHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.log.WithField("path", path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			validator, err := decodePublicKey(chi.URLParam(r, "address"))
			if err != nil {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("address is not a public key"))
			}

			state, err := s.reader.GetValidator(ctx, validator)
			if err != nil {
				return s.handleReadError(log, err)
			}

			respBody := NewGenericApiSuccessResponseBody()
			respBody["pda"] = base58.Encode(state.Address)
			respBody["validator"] = toValidatorView(state.Account)
			return http.StatusOK, respBody
		}()

		s.writeResponse(w, log, statusCode, body)
	}
}

func (s *Server) getEscrowHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.log.WithField("path", path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			testId := chi.URLParam(r, "testId")
			log = log.WithField("test_id", testId)

			state, err := s.reader.GetEscrow(ctx, testId)
			if err != nil {
				return s.handleReadError(log, err)
			}

			respBody := NewGenericApiSuccessResponseBody()
			respBody["pda"] = base58.Encode(state.Address)
			respBody["escrow"] = toEscrowView(state)
			return http.StatusOK, respBody
		}()

		s.writeResponse(w, log, statusCode, body)
	}
}

func (s *Server) verifySkillHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.log.WithField("path", path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			model, err := newVerifySkillRequestFromHttpContext(r)
			if err != nil {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
			}

			res, err := s.reader.VerifySkill(ctx, model.owner, model.skillId, model.minScore)
			if err != nil {
				return s.handleReadError(log, err)
			}

			respBody := NewGenericApiSuccessResponseBody()
			respBody["verified"] = res.Verified
			respBody["message"] = res.Message
			if res.Skill != nil {
				respBody["skill"] = toSkillView(res.Skill)
			}
			return http.StatusOK, respBody
		}()

		s.writeResponse(w, log, statusCode, body)
	}
}

func (s *Server) getDaoStatsHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.log.WithField("path", path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			stats, err := s.reader.GetDaoStats(ctx)
			if err != nil {
				return s.handleReadError(log, err)
			}

			respBody := NewGenericApiSuccessResponseBody()
			respBody["stats"] = toDaoStatsView(stats)
			return http.StatusOK, respBody
		}()

		s.writeResponse(w, log, statusCode, body)
	}
}

func (s *Server) getAddressHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.log.WithField("path", path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			kind := strings.ToLower(chi.URLParam(r, "kind"))
			key := chi.URLParam(r, "key")

			address, bump, err := code_skillchain.DeriveAddress(kind, key)
			if err != nil {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
			}

			respBody := NewGenericApiSuccessResponseBody()
			respBody["kind"] = kind
			respBody["address"] = base58.Encode(address)
			respBody["bump"] = bump
			return http.StatusOK, respBody
		}()

		s.writeResponse(w, log, statusCode, body)
	}
}

func (s *Server) airdropHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.log.WithField("path", path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			model, err := newAirdropRequestFromHttpContext(r)
			if err != nil {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
			}

			err = s.runtime.Airdrop(ctx, model.address, model.lamports)
			if err != nil {
				statusCode, err := HandleErrorInWebContext(err)
				if statusCode == http.StatusInternalServerError {
					log.WithError(err).Warn("failure processing airdrop")
				}
				return statusCode, NewGenericApiFailureResponseBody(err)
			}

			return http.StatusOK, NewGenericApiSuccessResponseBody()
		}()

		s.writeResponse(w, log, statusCode, body)
	}
}

func (s *Server) handleReadError(log *logrus.Entry, err error) (int, GenericApiResponseBody) {
	statusCode, safeErr := HandleErrorInWebContext(err)
	if statusCode == http.StatusInternalServerError {
		log.WithError(err).Warn("failure reading state")
	}
	return statusCode, NewGenericApiFailureResponseBody(safeErr)
}

func (s *Server) writeResponse(w http.ResponseWriter, log *logrus.Entry, statusCode int, body GenericApiResponseBody) {
	w.Header().Set(contentTypeHeaderName, jsonContentTypeHeaderValue)
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(body.ToString())); err != nil {
		log.WithError(err).Warn("failed to write body")
	}
}
