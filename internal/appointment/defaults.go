package appointment

// DefaultSnapshot is what a fresh installation starts with.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Doctors: []Doctor{
			{
				ID:          1,
				Name:        "Dr. Alice Smith",
				Specialty:   "Cardiologist",
				Image:       "https://storage.googleapis.com/a1aa/image/4f01e17c-c144-4a95-1f78-b36116685610.jpg",
				Description: "Expert in heart health and cardiovascular diseases with 10 years of experience.",
				Experience:  "10 years",
				Rating:      4.9,
				Available:   true,
				Schedule:    []string{"09:00", "10:00", "11:00", "14:00", "15:00"},
			},
			{
				ID:          2,
				Name:        "Dr. John Doe",
				Specialty:   "Pediatrician",
				Image:       "https://storage.googleapis.com/a1aa/image/a89d38ec-1627-4fad-af2d-83f5c3da1f1a.jpg",
				Description: "Caring for children's health and wellness with over 8 years of pediatric experience.",
				Experience:  "8 years",
				Rating:      4.8,
				Available:   true,
				Schedule:    []string{"10:00", "11:00", "12:00", "15:00", "16:00"},
			},
			{
				ID:          3,
				Name:        "Dr. Maria Lopez",
				Specialty:   "Dermatologist",
				Image:       "https://storage.googleapis.com/a1aa/image/ee0515b6-c7f7-4a52-b415-d40909f4a292.jpg",
				Description: "Specialist in skin care and treatment with 12 years of clinical experience.",
				Experience:  "12 years",
				Rating:      4.9,
				Available:   true,
			},
			{
				ID:          4,
				Name:        "Dr. David Nguyen",
				Specialty:   "Neurologist",
				Image:       "https://storage.googleapis.com/a1aa/image/9f3f63d3-7840-4fae-3699-1cfc387017a3.jpg",
				Description: "Experienced neurologist focusing on brain and nervous system disorders.",
				Experience:  "15 years",
				Rating:      4.7,
				Available:   true,
			},
			{
				ID:          5,
				Name:        "Dr. Emma Johnson",
				Specialty:   "General Practitioner",
				Image:       "https://storage.googleapis.com/a1aa/image/b0dcd950-d2de-47e2-3a53-88b50bec994b.jpg",
				Description: "Providing comprehensive primary care and health advice for all ages.",
				Experience:  "9 years",
				Rating:      4.8,
				Available:   true,
			},
			{
				ID:          6,
				Name:        "Dr. Michael Brown",
				Specialty:   "Orthopedic Surgeon",
				Image:       "https://storage.googleapis.com/a1aa/image/f7709932-2855-49d4-32c6-d24c6f957740.jpg",
				Description: "Specialist in bone and joint surgery with 15 years of surgical experience.",
				Experience:  "15 years",
				Rating:      4.9,
				Available:   true,
			},
		},
		Appointments: []Appointment{},
		Users:        []User{},
		Settings: map[string]string{
			"hospitalName": "WellBeing Hospital",
			"contactEmail": "support@wellbeinghospital.com",
			"contactPhone": "+1 (555) 123-4567",
			"workingHours": "9:00 AM - 6:00 PM",
		},
		NextID: 0,
	}
}
