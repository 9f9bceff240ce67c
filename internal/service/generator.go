package service

import (
	"alcyxob/training-planner/internal/domain"
	"fmt"
)

// Default weekly frequency by experience level.
var frequencyByExperience = map[domain.ExperienceLevel]int{
	domain.ExperienceBeginner:     3,
	domain.ExperienceIntermediate: 4,
	domain.ExperienceAdvanced:     5,
}

const (
	defaultFrequency       = 3
	defaultExercisesPerDay = 4
	MinFrequency           = 1
	MaxFrequency           = 7
)

var exercisesBySession = map[domain.SessionLength]int{
	domain.Session30:  3,
	domain.Session45:  4,
	domain.Session60:  5,
	domain.Session90:  6,
	domain.Session120: 7,
}

// prescription is the set/rep scheme applied to every exercise of a draft.
type prescription struct {
	sets        int
	repetitions int
	restSeconds int
	tempo       domain.Tempo
}

var prescriptionByGoal = map[domain.PrimaryGoal]prescription{
	domain.GoalStrength:       {sets: 5, repetitions: 5, restSeconds: 180, tempo: "31X1"},
	domain.GoalMuscleBuilding: {sets: 4, repetitions: 10, restSeconds: 90, tempo: "3111"},
	domain.GoalEndurance:      {sets: 3, repetitions: 15, restSeconds: 45, tempo: "2121"},
	domain.GoalWeightLoss:     {sets: 3, repetitions: 12, restSeconds: 60, tempo: "21X1"},
}

var generalPrescription = prescription{sets: 3, repetitions: 10, restSeconds: 75, tempo: "2111"}

func frequencyFor(level domain.ExperienceLevel) int {
	if f, ok := frequencyByExperience[level]; ok {
		return f
	}
	return defaultFrequency
}

func exercisesPerDay(length domain.SessionLength) int {
	if n, ok := exercisesBySession[length]; ok {
		return n
	}
	return defaultExercisesPerDay
}

func prescriptionFor(goal domain.PrimaryGoal) prescription {
	if p, ok := prescriptionByGoal[goal]; ok {
		return p
	}
	return generalPrescription
}

// buildTrainingDays lays out params.Frequency days. Exercises are taken
// round-robin from library (already ordered by name) so consecutive days
// continue where the previous one stopped. A day never repeats an exercise.
func buildTrainingDays(params domain.GenerationParams, library []domain.Exercise) []domain.TrainingDay {
	if len(library) == 0 || params.Frequency < 1 {
		return nil
	}

	perDay := min(exercisesPerDay(params.SessionLength), len(library))
	mainCount := 1
	if perDay >= 5 {
		mainCount = 2
	}
	rx := prescriptionFor(params.PrimaryGoal)

	days := make([]domain.TrainingDay, 0, params.Frequency)
	cursor := 0
	for d := 0; d < params.Frequency; d++ {
		picked := make([]domain.TrainingExercise, perDay)
		for i := range picked {
			ex := library[(cursor+i)%len(library)]
			picked[i] = domain.TrainingExercise{
				ExerciseID:  ex.ID,
				Sets:        rx.sets,
				Repetitions: rx.repetitions,
				RestSeconds: rx.restSeconds,
				Tempo:       rx.tempo,
			}
		}
		cursor = (cursor + perDay) % len(library)

		slots := []domain.TrainingSlot{{SlotNotes: "Main", Exercises: picked[:mainCount]}}
		if perDay > mainCount {
			slots = append(slots, domain.TrainingSlot{SlotNotes: "Accessory", Exercises: picked[mainCount:]})
		}
		days = append(days, domain.TrainingDay{
			Label: fmt.Sprintf("Day %d", d+1),
			Notes: dayNotes(params),
			Slots: slots,
		})
	}
	return days
}

func dayNotes(params domain.GenerationParams) string {
	goal := params.PrimaryGoal
	if goal == "" {
		goal = domain.GoalGeneralFitness
	}
	if params.SessionLength == "" {
		return fmt.Sprintf("Goal: %s", goal)
	}
	return fmt.Sprintf("Goal: %s, session: %s", goal, params.SessionLength)
}
