package skillchain

type SkillLevel uint8

const (
	SkillLevelJunior SkillLevel = iota
	SkillLevelMiddle
	SkillLevelSenior
)

// LevelFromScore maps a certification score to a skill level
func LevelFromScore(score uint8) SkillLevel {
	switch {
	case score >= 90:
		return SkillLevelSenior
	case score >= 80:
		return SkillLevelMiddle
	default:
		return SkillLevelJunior
	}
}

func (l SkillLevel) String() string {
	switch l {
	case SkillLevelJunior:
		return "Junior"
	case SkillLevelMiddle:
		return "Middle"
	case SkillLevelSenior:
		return "Senior"
	}
	return "unknown"
}

func putSkillLevel(dst []byte, v SkillLevel, offset *int) {
	putUint8(dst, uint8(v), offset)
}
func getSkillLevel(src []byte, dst *SkillLevel, offset *int) error {
	var raw uint8
	getUint8(src, &raw, offset)
	if raw > uint8(SkillLevelSenior) {
		return ErrInvalidAccountData
	}
	*dst = SkillLevel(raw)
	return nil
}
