// Package model contains the achievement records and score results passed between layers.
//
// Every discriminator is a typed string so that JSON payloads decode directly
// into it. Lookups in the rules package switch over the declared constants;
// any other value scores zero.
package model

// PublicationCategory classifies a paper by the venue list it appears on.
type PublicationCategory string

const (
	CategoryNone             PublicationCategory = ""
	CategoryTopJournal       PublicationCategory = "top_journal"
	CategoryHighLevelChinese PublicationCategory = "high_level_chinese"
	CategoryInfoComm         PublicationCategory = "info_comm"
	CategoryA                PublicationCategory = "A"
	CategoryB                PublicationCategory = "B"
	CategoryC                PublicationCategory = "C"
)

// Publication is a paper claimed by the candidate. Category holds the
// lettered grade; the venue-list flags take precedence over it.
type Publication struct {
	Title            string              `json:"title" yaml:"title"`
	Category         PublicationCategory `json:"category" yaml:"category"`
	TopJournal       bool                `json:"top_journal" yaml:"top_journal"`
	HighLevelChinese bool                `json:"high_level_chinese" yaml:"high_level_chinese"`
	InfoComm         bool                `json:"info_comm" yaml:"info_comm"`
	AuthorRank       int                 `json:"author_rank" yaml:"author_rank"`
	TotalAuthors     int                 `json:"total_authors" yaml:"total_authors"`
	CoFirst          bool                `json:"co_first" yaml:"co_first"`
	Independent      bool                `json:"independent" yaml:"independent"`
}

// Venue resolves the flags and the lettered grade to the single category the
// paper is scored under: top journal, then high-level Chinese journal, then
// the information and communication engineering list, then the letter.
func (p Publication) Venue() PublicationCategory {
	switch {
	case p.TopJournal || p.Category == CategoryTopJournal:
		return CategoryTopJournal
	case p.HighLevelChinese || p.Category == CategoryHighLevelChinese:
		return CategoryHighLevelChinese
	case p.InfoComm || p.Category == CategoryInfoComm:
		return CategoryInfoComm
	}
	switch p.Category {
	case CategoryA, CategoryB, CategoryC:
		return p.Category
	default:
		return CategoryNone
	}
}

// Patent is an invention patent claimed by the candidate.
type Patent struct {
	Title        string `json:"title" yaml:"title"`
	AuthorRank   int    `json:"author_rank" yaml:"author_rank"`
	TotalAuthors int    `json:"total_authors" yaml:"total_authors"`
}

// CompetitionLevel is the ordinance tier of a contest.
type CompetitionLevel string

const (
	LevelAPlus  CompetitionLevel = "A+"
	LevelA      CompetitionLevel = "A"
	LevelAMinus CompetitionLevel = "A-"
)

// AwardTier is the prize obtained in a contest.
type AwardTier string

const (
	AwardSpecial   AwardTier = "special"
	AwardFirst     AwardTier = "first"
	AwardSecond    AwardTier = "second"
	AwardThird     AwardTier = "third"
	AwardHonorable AwardTier = "honorable"
)

// Competition is a contest result. Entries sharing a WorkKey describe the
// same underlying work submitted under several headings.
type Competition struct {
	Name            string           `json:"name" yaml:"name"`
	Level           CompetitionLevel `json:"level" yaml:"level"`
	Award           AwardTier        `json:"award" yaml:"award"`
	Team            bool             `json:"team" yaml:"team"`
	TeamRank        int              `json:"team_rank" yaml:"team_rank"`
	TeamSize        int              `json:"team_size" yaml:"team_size"`
	PersonalProject bool             `json:"personal_project" yaml:"personal_project"`
	External        bool             `json:"external" yaml:"external"`
	WorkKey         string           `json:"work_key" yaml:"work_key"`
}

// Scope is the geographic reach of an award, project or honor.
type Scope string

const (
	ScopeInternational Scope = "international"
	ScopeNational      Scope = "national"
	ScopeProvincial    Scope = "provincial"
	ScopeSchool        Scope = "school"
)

// ProjectRole is the candidate's role in an innovation project.
type ProjectRole string

const (
	RoleLead   ProjectRole = "lead"
	RoleMember ProjectRole = "member"
)

// ProjectStatus is the lifecycle state of an innovation project.
type ProjectStatus string

const (
	StatusCompleted ProjectStatus = "completed"
	StatusOngoing   ProjectStatus = "ongoing"
)

// InnovationProject is a student innovation and entrepreneurship project.
type InnovationProject struct {
	Name   string        `json:"name" yaml:"name"`
	Level  Scope         `json:"level" yaml:"level"`
	Role   ProjectRole   `json:"role" yaml:"role"`
	Status ProjectStatus `json:"status" yaml:"status"`
}

// InternshipDuration is the length of an international-organization placement.
type InternshipDuration string

const (
	InternshipNone     InternshipDuration = ""
	InternshipYear     InternshipDuration = "year"
	InternshipSemester InternshipDuration = "semester"
)

// Internship describes an international-organization placement.
type Internship struct {
	Duration InternshipDuration `json:"duration" yaml:"duration"`
}

// MilitaryService describes enlistment during the degree.
type MilitaryService struct {
	Years int `json:"years" yaml:"years"`
}

// SegmentNormal is the only volunteer segment type counted at full weight.
const SegmentNormal = "normal"

// VolunteerSegment is a block of service hours of one kind.
type VolunteerSegment struct {
	Hours float64 `json:"hours" yaml:"hours"`
	Type  string  `json:"type" yaml:"type"`
}

// VolunteerRole is the candidate's role in an awarded volunteer activity.
type VolunteerRole string

const (
	VolunteerLeader   VolunteerRole = "team_leader"
	VolunteerPersonal VolunteerRole = "personal"
	VolunteerMember   VolunteerRole = "team_member"
)

// VolunteerAward is a commendation for volunteer work.
type VolunteerAward struct {
	Level Scope         `json:"level" yaml:"level"`
	Role  VolunteerRole `json:"role" yaml:"role"`
}

// Volunteer aggregates volunteer hours and awards. When Segments is non-empty
// it replaces Hours.
type Volunteer struct {
	Hours    float64            `json:"hours" yaml:"hours"`
	Segments []VolunteerSegment `json:"segments,omitempty" yaml:"segments"`
	Awards   []VolunteerAward   `json:"awards,omitempty" yaml:"awards"`
}

// Honor is a title such as "outstanding student" granted in a given year.
type Honor struct {
	Title      string `json:"title" yaml:"title"`
	Year       int    `json:"year" yaml:"year"`
	Level      Scope  `json:"level" yaml:"level"`
	Collective bool   `json:"collective" yaml:"collective"`
}

// SocialRole is the five-tier student-organization position ladder.
type SocialRole string

const (
	SocialExec      SocialRole = "exec"
	SocialPresidium SocialRole = "presidium"
	SocialHead      SocialRole = "head"
	SocialDeputy    SocialRole = "deputy"
	SocialMember    SocialRole = "member"
)

// SocialWork is a student-organization position held in a given year.
type SocialWork struct {
	Organization string     `json:"organization" yaml:"organization"`
	Year         int        `json:"year" yaml:"year"`
	Role         SocialRole `json:"role" yaml:"role"`
	Rating       float64    `json:"rating" yaml:"rating"`
}

// SportResult is the placing obtained in a sports event.
type SportResult string

const (
	ResultChampion SportResult = "champion"
	ResultRunnerUp SportResult = "runner_up"
	ResultThird    SportResult = "third"
	ResultTop8     SportResult = "top8"
)

// Sport is a sports-event placing.
type Sport struct {
	Event    string      `json:"event" yaml:"event"`
	Scope    Scope       `json:"scope" yaml:"scope"`
	Result   SportResult `json:"result" yaml:"result"`
	Team     bool        `json:"team" yaml:"team"`
	TeamSize int         `json:"team_size" yaml:"team_size"`
}

// AcademicInputs groups the records scored under academic achievement.
type AcademicInputs struct {
	Publications        []Publication       `json:"publications" yaml:"publications"`
	Patents             []Patent            `json:"patents" yaml:"patents"`
	Competitions        []Competition       `json:"competitions" yaml:"competitions"`
	Innovation          []InnovationProject `json:"innovation" yaml:"innovation"`
	SpecialTalentPassed bool                `json:"special_talent_passed" yaml:"special_talent_passed"`
}

// PerformanceInputs groups the records scored under comprehensive performance.
type PerformanceInputs struct {
	Internship Internship      `json:"internship" yaml:"internship"`
	Military   MilitaryService `json:"military" yaml:"military"`
	Volunteer  Volunteer       `json:"volunteer" yaml:"volunteer"`
	Honors     []Honor         `json:"honors" yaml:"honors"`
	SocialWork []SocialWork    `json:"social_work" yaml:"social_work"`
	Sports     []Sport         `json:"sports" yaml:"sports"`
}
