package domain

// ExperienceLevel is the self-reported training experience of a user.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// ExperienceLevels lists every accepted experience level.
var ExperienceLevels = []ExperienceLevel{ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced}

func (l ExperienceLevel) Valid() bool { return contains(ExperienceLevels, l) }

// PrimaryGoal is the main objective a plan is built around.
type PrimaryGoal string

const (
	GoalStrength       PrimaryGoal = "strength"
	GoalMuscleBuilding PrimaryGoal = "muscle_building"
	GoalEndurance      PrimaryGoal = "endurance"
	GoalWeightLoss     PrimaryGoal = "weight_loss"
	GoalGeneralFitness PrimaryGoal = "general_fitness"
)

var PrimaryGoals = []PrimaryGoal{GoalStrength, GoalMuscleBuilding, GoalEndurance, GoalWeightLoss, GoalGeneralFitness}

func (g PrimaryGoal) Valid() bool { return contains(PrimaryGoals, g) }

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

var Sexes = []Sex{SexMale, SexFemale, SexOther}

func (s Sex) Valid() bool { return contains(Sexes, s) }

// SessionLength is the preferred duration of one training session.
type SessionLength string

const (
	Session30  SessionLength = "30min"
	Session45  SessionLength = "45min"
	Session60  SessionLength = "60min"
	Session90  SessionLength = "90min"
	Session120 SessionLength = "120min"
)

var SessionLengths = []SessionLength{Session30, Session45, Session60, Session90, Session120}

func (s SessionLength) Valid() bool { return contains(SessionLengths, s) }

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
