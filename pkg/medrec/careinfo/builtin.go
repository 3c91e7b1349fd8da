package careinfo

// DefaultAliases resolve prediction names that differ from dataset names.
func DefaultAliases() map[string]string {
	return map[string]string{
		"Peptic ulcer diseae": "Peptic ulcer disease",
		"Sinus":               "Sinusitis",
	}
}

// Builtin returns advice for generic diagnoses produced by the fallback
// strategies, which the medical dataset does not cover.
func Builtin() map[string]Info {
	return map[string]Info{
		"Viral Infection": {
			Description: "A viral infection is an illness caused by a virus. Common symptoms include fever, fatigue, and body aches. Most viral infections resolve on their own with rest and supportive care.",
			Precautions: []string{"Get plenty of rest", "Stay hydrated", "Use over-the-counter pain relievers", "Avoid contact with others to prevent spreading"},
			Medications: []string{"Acetaminophen", "Ibuprofen", "Antiviral medications (if prescribed)"},
			Diets:       []string{"Drink plenty of fluids", "Eat light, nutritious meals", "Include vitamin C rich foods"},
			Workouts:    []string{"Rest completely until symptoms improve", "Gradual return to normal activities"},
		},
		"Common Cold": {
			Description: "The common cold is a viral infection of your nose and throat (upper respiratory tract). It's usually harmless, although it might not feel that way.",
			Precautions: []string{"Wash hands frequently", "Avoid close contact with sick individuals", "Disinfect surfaces", "Stay hydrated"},
			Medications: []string{"Decongestants", "Antihistamines", "Pain relievers", "Cough suppressants"},
			Diets:       []string{"Warm fluids like tea or soup", "Honey", "Vitamin C rich foods", "Chicken soup"},
			Workouts:    []string{"Light activities if feeling well", "Rest if experiencing severe symptoms"},
		},
		"Viral Respiratory Infection": {
			Description: "A viral respiratory infection affects the nose, throat, or lungs. These infections are common and usually resolve on their own within a week or two.",
			Precautions: []string{"Cover mouth when coughing or sneezing", "Wash hands frequently", "Avoid touching face", "Stay home when sick"},
			Medications: []string{"Cough syrup", "Decongestants", "Pain relievers", "Throat lozenges"},
			Diets:       []string{"Warm liquids", "Honey and lemon tea", "Clear broths", "Soft foods"},
			Workouts:    []string{"Rest until symptoms subside", "Avoid strenuous activities"},
		},
		"Sinusitis": {
			Description: "Sinusitis is an inflammation or swelling of the tissue lining the sinuses. Common symptoms include nasal congestion, facial pain, and headache.",
			Precautions: []string{"Use a humidifier", "Avoid allergens", "Stay hydrated", "Practice good nasal hygiene"},
			Medications: []string{"Decongestants", "Nasal corticosteroids", "Saline nasal sprays", "Pain relievers"},
			Diets:       []string{"Anti-inflammatory foods", "Plenty of water", "Warm liquids", "Spicy foods to clear sinuses"},
			Workouts:    []string{"Light activities if feeling well", "Avoid activities that increase head pressure"},
		},
	}
}
