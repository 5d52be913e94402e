package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsStructName = "runtime.runtime"

	instructionExecutedEventName = "InstructionExecuted"
	airdropCountMetricName       = "Runtime/airdrops"
	instructionTxMetricName      = "Runtime/instruction_tx_duration"
)

var (
	instructionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillchain_runtime_instructions_processed_total",
		Help: "Total number of instructions that committed successfully",
	}, []string{"program", "instruction"})

	instructionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillchain_runtime_instructions_failed_total",
		Help: "Total number of instructions that were rejected or rolled back",
	}, []string{"program", "instruction"})

	lamportsAirdropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skillchain_runtime_lamports_airdropped_total",
		Help: "Total number of lamports credited through airdrops",
	})
)

func recordInstructionResult(program, instruction string, err error) {
	if err != nil {
		instructionsFailed.WithLabelValues(program, instruction).Inc()
		return
	}
	instructionsProcessed.WithLabelValues(program, instruction).Inc()
}
