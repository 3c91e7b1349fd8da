// Package specialist maps a predicted disease to the kind of doctor to see.
package specialist

import "github.com/cognicore/medrec/pkg/medrec/normalize"

// Specialist is a doctor specialty label.
type Specialist string

const (
	GeneralPhysician   Specialist = "General Physician"
	Dermatologist      Specialist = "Dermatologist"
	Allergist          Specialist = "Allergist"
	InfectiousDisease  Specialist = "Infectious Disease Specialist"
	Pulmonologist      Specialist = "Pulmonologist"
	Hepatologist       Specialist = "Hepatologist"
	Cardiologist       Specialist = "Cardiologist"
	Gastroenterologist Specialist = "Gastroenterologist"
	Endocrinologist    Specialist = "Endocrinologist"
	Neurologist        Specialist = "Neurologist"
	Orthopedist        Specialist = "Orthopedist"
	ENTSpecialist      Specialist = "ENT Specialist"
	Rheumatologist     Specialist = "Rheumatologist"
	Urologist          Specialist = "Urologist"
	Proctologist       Specialist = "Proctologist"
	Psychiatrist       Specialist = "Psychiatrist"
)

// Default is returned for unknown or blank diseases.
const Default = GeneralPhysician

// Disease identifies a disease with a known specialty.
type Disease int

const (
	Unknown Disease = iota
	FungalInfection
	Allergy
	CommonCold
	Malaria
	Dengue
	Typhoid
	ChickenPox
	AIDS
	Tuberculosis
	HepatitisA
	HepatitisB
	HepatitisC
	HepatitisD
	HepatitisE
	AlcoholicHepatitis
	HeartAttack
	Hypertension
	Bradycardia
	Tachycardia
	GERD
	ChronicCholestasis
	PepticUlcer
	Gastroenteritis
	Jaundice
	Diabetes
	Hyperthyroidism
	Hypothyroidism
	Hypoglycemia
	BronchialAsthma
	Pneumonia
	Migraine
	CervicalSpondylosis
	Paralysis
	Vertigo
	Osteoarthritis
	Arthritis
	Acne
	Impetigo
	Psoriasis
	UrinaryTractInfection
	Piles
	Depression
	Anxiety
	ViralInfection
	ViralRespiratoryInfection
	Sinusitis
)

type entry struct {
	name       string
	specialist Specialist
	aliases    []string
}

var table = map[Disease]entry{
	FungalInfection:           {"Fungal infection", Dermatologist, nil},
	Allergy:                   {"Allergy", Allergist, nil},
	CommonCold:                {"Common Cold", GeneralPhysician, nil},
	Malaria:                   {"Malaria", GeneralPhysician, nil},
	Dengue:                    {"Dengue", GeneralPhysician, nil},
	Typhoid:                   {"Typhoid", GeneralPhysician, nil},
	ChickenPox:                {"Chicken pox", GeneralPhysician, nil},
	AIDS:                      {"AIDS", InfectiousDisease, nil},
	Tuberculosis:              {"Tuberculosis", Pulmonologist, nil},
	HepatitisA:                {"hepatitis A", Hepatologist, nil},
	HepatitisB:                {"Hepatitis B", Hepatologist, nil},
	HepatitisC:                {"Hepatitis C", Hepatologist, nil},
	HepatitisD:                {"Hepatitis D", Hepatologist, nil},
	HepatitisE:                {"Hepatitis E", Hepatologist, nil},
	AlcoholicHepatitis:        {"Alcoholic hepatitis", Hepatologist, nil},
	HeartAttack:               {"Heart attack", Cardiologist, nil},
	Hypertension:              {"Hypertension", Cardiologist, nil},
	Bradycardia:               {"Bradycardia", Cardiologist, nil},
	Tachycardia:               {"Tachycardia", Cardiologist, nil},
	GERD:                      {"GERD", Gastroenterologist, nil},
	ChronicCholestasis:        {"Chronic cholestasis", Gastroenterologist, nil},
	PepticUlcer:               {"Peptic ulcer disease", Gastroenterologist, []string{"Peptic ulcer diseae"}},
	Gastroenteritis:           {"Gastroenteritis", Gastroenterologist, nil},
	Jaundice:                  {"Jaundice", Gastroenterologist, nil},
	Diabetes:                  {"Diabetes", Endocrinologist, nil},
	Hyperthyroidism:           {"Hyperthyroidism", Endocrinologist, nil},
	Hypothyroidism:            {"Hypothyroidism", Endocrinologist, nil},
	Hypoglycemia:              {"Hypoglycemia", Endocrinologist, nil},
	BronchialAsthma:           {"Bronchial Asthma", Pulmonologist, nil},
	Pneumonia:                 {"Pneumonia", Pulmonologist, nil},
	Migraine:                  {"Migraine", Neurologist, nil},
	CervicalSpondylosis:       {"Cervical spondylosis", Orthopedist, nil},
	Paralysis:                 {"Paralysis (brain hemorrhage)", Neurologist, nil},
	Vertigo:                   {"(vertigo) Paroymsal  Positional Vertigo", ENTSpecialist, nil},
	Osteoarthritis:            {"Osteoarthristis", Orthopedist, []string{"Osteoarthritis"}},
	Arthritis:                 {"Arthritis", Rheumatologist, nil},
	Acne:                      {"Acne", Dermatologist, nil},
	Impetigo:                  {"Impetigo", Dermatologist, nil},
	Psoriasis:                 {"Psoriasis", Dermatologist, nil},
	UrinaryTractInfection:     {"Urinary tract infection", Urologist, nil},
	Piles:                     {"Dimorphic hemmorhoids(piles)", Proctologist, nil},
	Depression:                {"Depression", Psychiatrist, nil},
	Anxiety:                   {"Anxiety", Psychiatrist, nil},
	ViralInfection:            {"Viral Infection", GeneralPhysician, nil},
	ViralRespiratoryInfection: {"Viral Respiratory Infection", Pulmonologist, nil},
	Sinusitis:                 {"Sinusitis", ENTSpecialist, []string{"Sinus"}},
}

// byKey is keyed by the normalized disease name so spacing, case and
// punctuation differences in dataset names still resolve.
var byKey = func() map[string]Disease {
	m := make(map[string]Disease, len(table))
	for id, e := range table {
		m[normalize.Text(e.name)] = id
		for _, alias := range e.aliases {
			m[normalize.Text(alias)] = id
		}
	}
	return m
}()

// Parse resolves a disease name to its identifier.
func Parse(name string) (Disease, bool) {
	id, ok := byKey[normalize.Text(name)]
	return id, ok
}

// String returns the canonical disease name.
func (d Disease) String() string {
	if e, ok := table[d]; ok {
		return e.name
	}
	return "Unknown"
}

// Specialist returns the specialty for d, or Default for Unknown.
func (d Disease) Specialist() Specialist {
	if e, ok := table[d]; ok {
		return e.specialist
	}
	return Default
}

// For returns the specialist for a disease name, or Default when the name is
// blank or unrecognized.
func For(disease string) Specialist {
	id, ok := Parse(disease)
	if !ok {
		return Default
	}
	return id.Specialist()
}
