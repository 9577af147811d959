package models

import "strings"

type Species string

const (
	SpeciesDog     Species = "DOG"
	SpeciesCat     Species = "CAT"
	SpeciesBird    Species = "BIRD"
	SpeciesRabbit  Species = "RABBIT"
	SpeciesHamster Species = "HAMSTER"
	SpeciesOther   Species = "OTHER"
)

var allSpecies = []Species{SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesHamster, SpeciesOther}

// ParseSpecies accepts a species name in any case.
func ParseSpecies(s string) (Species, bool) {
	up := Species(strings.ToUpper(strings.TrimSpace(s)))
	for _, sp := range allSpecies {
		if sp == up {
			return sp, true
		}
	}
	return "", false
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Pet belongs to exactly one user.
type Pet struct {
	Base
	OwnerID  uint    `json:"owner_id" gorm:"not null;index"`
	Owner    User    `json:"-" gorm:"foreignKey:OwnerID"`
	Name     string  `json:"name" gorm:"type:varchar(128);not null"`
	Species  Species `json:"species" gorm:"type:varchar(16);not null"`
	Breed    string  `json:"breed" gorm:"type:varchar(128)"`
	Age      int     `json:"age"` // months
	Weight   float64 `json:"weight"`
	Gender   Gender  `json:"gender" gorm:"type:varchar(8)"`
	Notes    string  `json:"notes" gorm:"type:text"`
	ImageURL string  `json:"image_url" gorm:"type:varchar(512)"`
}
