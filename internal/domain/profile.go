// internal/domain/profile.go
package domain

import (
	"time"
)

// Profile holds the anthropometric data and training preferences of a user
// (profile.profiles). Every preference is nullable: a profile may be created
// empty and completed later.
type Profile struct {
	ID                 string           `bson:"_id" json:"id"`
	OwnerID            string           `bson:"owner_id" json:"owner_id"`
	Age                *int             `bson:"age" json:"age"`
	HeightCM           *float64         `bson:"height_cm" json:"height_cm"`
	WeightKG           *float64         `bson:"weight_kg" json:"weight_kg"`
	Sex                *Sex             `bson:"sex" json:"sex"`
	ExperienceLevel    *ExperienceLevel `bson:"experience_level" json:"experience_level"`
	PrimaryGoal        *PrimaryGoal     `bson:"primary_goal" json:"primary_goal"`
	SessionLength      *SessionLength   `bson:"session_length" json:"session_length"`
	AvailableEquipment []string         `bson:"available_equipment" json:"available_equipment"`
	Limitations        *string          `bson:"limitations" json:"limitations"`
	GenerationParams   any              `bson:"generation_params" json:"generation_params"` // opaque JSON
	CreatedAt          time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `bson:"updated_at" json:"updated_at"`
	DeletedAt          *time.Time       `bson:"deleted_at" json:"deleted_at"`
}

// ProfileInsert is the shape accepted when creating a profile. Nil fields are stored as null.
type ProfileInsert struct {
	OwnerID            string
	Age                *int
	HeightCM           *float64
	WeightKG           *float64
	Sex                *Sex
	ExperienceLevel    *ExperienceLevel
	PrimaryGoal        *PrimaryGoal
	SessionLength      *SessionLength
	AvailableEquipment []string
	Limitations        *string
	GenerationParams   any
}

func (in ProfileInsert) Columns() map[string]any {
	cols := map[string]any{"owner_id": in.OwnerID}
	if in.Age != nil {
		cols["age"] = *in.Age
	}
	if in.HeightCM != nil {
		cols["height_cm"] = *in.HeightCM
	}
	if in.WeightKG != nil {
		cols["weight_kg"] = *in.WeightKG
	}
	if in.Sex != nil {
		cols["sex"] = string(*in.Sex)
	}
	if in.ExperienceLevel != nil {
		cols["experience_level"] = string(*in.ExperienceLevel)
	}
	if in.PrimaryGoal != nil {
		cols["primary_goal"] = string(*in.PrimaryGoal)
	}
	if in.SessionLength != nil {
		cols["session_length"] = string(*in.SessionLength)
	}
	if in.AvailableEquipment != nil {
		cols["available_equipment"] = in.AvailableEquipment
	}
	if in.Limitations != nil {
		cols["limitations"] = *in.Limitations
	}
	if in.GenerationParams != nil {
		cols["generation_params"] = in.GenerationParams
	}
	return cols
}

// ProfileUpdate is a partial update of a profile. Null clears a field.
type ProfileUpdate struct {
	Age                Optional[int]
	HeightCM           Optional[float64]
	WeightKG           Optional[float64]
	Sex                Optional[Sex]
	ExperienceLevel    Optional[ExperienceLevel]
	PrimaryGoal        Optional[PrimaryGoal]
	SessionLength      Optional[SessionLength]
	AvailableEquipment Optional[[]string]
	Limitations        Optional[string]
	GenerationParams   Optional[any]
}

func (u ProfileUpdate) Columns() map[string]any {
	cols := map[string]any{}
	u.Age.put(cols, "age")
	u.HeightCM.put(cols, "height_cm")
	u.WeightKG.put(cols, "weight_kg")
	putString(cols, "sex", u.Sex)
	putString(cols, "experience_level", u.ExperienceLevel)
	putString(cols, "primary_goal", u.PrimaryGoal)
	putString(cols, "session_length", u.SessionLength)
	u.AvailableEquipment.put(cols, "available_equipment")
	u.Limitations.put(cols, "limitations")
	u.GenerationParams.put(cols, "generation_params")
	return cols
}

// Apply copies every set field of u onto p.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.Age.Set {
		p.Age = u.Age.Ptr()
	}
	if u.HeightCM.Set {
		p.HeightCM = u.HeightCM.Ptr()
	}
	if u.WeightKG.Set {
		p.WeightKG = u.WeightKG.Ptr()
	}
	if u.Sex.Set {
		p.Sex = u.Sex.Ptr()
	}
	if u.ExperienceLevel.Set {
		p.ExperienceLevel = u.ExperienceLevel.Ptr()
	}
	if u.PrimaryGoal.Set {
		p.PrimaryGoal = u.PrimaryGoal.Ptr()
	}
	if u.SessionLength.Set {
		p.SessionLength = u.SessionLength.Ptr()
	}
	if u.AvailableEquipment.Set {
		p.AvailableEquipment = u.AvailableEquipment.Value
	}
	if u.Limitations.Set {
		p.Limitations = u.Limitations.Ptr()
	}
	if u.GenerationParams.Set {
		p.GenerationParams = u.GenerationParams.Value
	}
}

// putString stores enum-typed optionals as plain strings so the column kind checks see text.
func putString[T ~string](cols map[string]any, column string, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Null {
		cols[column] = nil
		return
	}
	cols[column] = string(o.Value)
}
