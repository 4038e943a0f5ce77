package model

// Valid reports whether c names a scoring venue category.
func (c PublicationCategory) Valid() bool {
	switch c {
	case CategoryTopJournal, CategoryHighLevelChinese, CategoryInfoComm, CategoryA, CategoryB, CategoryC:
		return true
	default:
		return false
	}
}

// Valid reports whether l is a known competition tier.
func (l CompetitionLevel) Valid() bool {
	switch l {
	case LevelAPlus, LevelA, LevelAMinus:
		return true
	default:
		return false
	}
}

// Valid reports whether a is a known prize tier.
func (a AwardTier) Valid() bool {
	switch a {
	case AwardSpecial, AwardFirst, AwardSecond, AwardThird, AwardHonorable:
		return true
	default:
		return false
	}
}

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeInternational, ScopeNational, ScopeProvincial, ScopeSchool:
		return true
	default:
		return false
	}
}

// Valid reports whether r is a known project role.
func (r ProjectRole) Valid() bool {
	switch r {
	case RoleLead, RoleMember:
		return true
	default:
		return false
	}
}

// Valid reports whether d is a scoring internship duration.
func (d InternshipDuration) Valid() bool {
	switch d {
	case InternshipYear, InternshipSemester:
		return true
	default:
		return false
	}
}

// Valid reports whether r is a known volunteer role.
func (r VolunteerRole) Valid() bool {
	switch r {
	case VolunteerLeader, VolunteerPersonal, VolunteerMember:
		return true
	default:
		return false
	}
}

// Valid reports whether r is one of the five social-work tiers.
func (r SocialRole) Valid() bool {
	switch r {
	case SocialExec, SocialPresidium, SocialHead, SocialDeputy, SocialMember:
		return true
	default:
		return false
	}
}

// Valid reports whether r is a scoring sports placing.
func (r SportResult) Valid() bool {
	switch r {
	case ResultChampion, ResultRunnerUp, ResultThird, ResultTop8:
		return true
	default:
		return false
	}
}
