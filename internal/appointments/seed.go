package appointments

import "time"

func intPtr(v int) *int { return &v }

// SeedAppointments builds the demo collection relative to now: three upcoming
// sessions and three past ones.
func SeedAppointments(now time.Time, loc *time.Location) []Appointment {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := func(offset int) string {
		return local.AddDate(0, 0, offset).Format("2006-01-02")
	}
	created := now.UTC().AddDate(0, 0, -30)

	ananya := TherapistSnapshot{ID: "th-001", Name: "Dr. Ananya Sharma", Photo: "/images/therapists/ananya-sharma.jpg", Specialization: "Anxiety Disorders"}
	rohan := TherapistSnapshot{ID: "th-002", Name: "Dr. Rohan Mehta", Photo: "/images/therapists/rohan-mehta.jpg", Specialization: "Couples Therapy"}
	meera := TherapistSnapshot{ID: "th-005", Name: "Dr. Meera Iyer", Photo: "/images/therapists/meera-iyer.jpg", Specialization: "Sleep Disorders"}
	patient := &PatientSnapshot{ID: "pt-demo", Name: "Demo Patient"}

	return []Appointment{
		{
			ID: "apt-demo-001", Therapist: ananya, Patient: patient,
			Date: day(1), Time: "10:00", Duration: 50,
			Type: TypeConsultation, Status: StatusUpcoming, Fee: 1499,
			MeetingLink: "https://meet.therapy.local/session/apt-demo-001",
			ReschedulesLeft: 2, PaymentStatus: PaymentPaid, InvoiceNumber: "INV-DEMO-001",
			CreatedAt: created,
		},
		{
			ID: "apt-demo-002", Therapist: rohan, Patient: patient,
			Date: day(3), Time: "16:30", Duration: 50,
			Type: TypeFollowUp, Status: StatusUpcoming, Fee: 1799,
			MeetingLink: "https://meet.therapy.local/session/apt-demo-002",
			ReschedulesLeft: 1, PaymentStatus: PaymentPaid, InvoiceNumber: "INV-DEMO-002",
			CreatedAt: created,
		},
		{
			ID: "apt-demo-003", Therapist: meera, Patient: patient,
			Date: day(7), Time: "09:00", Duration: 30,
			Type: TypeAssessment, Status: StatusUpcoming, Fee: 0,
			MeetingLink: "https://meet.therapy.local/session/apt-demo-003",
			ReschedulesLeft: 2, PaymentStatus: PaymentPaid,
			CreatedAt: created,
		},
		{
			ID: "apt-demo-004", Therapist: ananya, Patient: patient,
			Date: day(-7), Time: "11:00", Duration: 50,
			Type: TypeConsultation, Status: StatusCompleted, Fee: 1499,
			Notes: "Discussed breathing techniques for panic episodes.", Rating: intPtr(5),
			ReschedulesLeft: 2, PaymentStatus: PaymentPaid, InvoiceNumber: "INV-DEMO-004",
			CreatedAt: created,
		},
		{
			ID: "apt-demo-005", Therapist: ananya, Patient: patient,
			Date: day(-14), Time: "11:00", Duration: 30,
			Type: TypeAssessment, Status: StatusCompleted, Fee: 0,
			Notes: "Initial assessment; recommended weekly CBT.", Rating: intPtr(4),
			ReschedulesLeft: 2, PaymentStatus: PaymentPaid,
			CreatedAt: created,
		},
		{
			ID: "apt-demo-006", Therapist: rohan, Patient: patient,
			Date: day(-3), Time: "18:00", Duration: 50,
			Type: TypeConsultation, Status: StatusCancelled, Fee: 1799,
			ReschedulesLeft: 2, PaymentStatus: PaymentRefunded, InvoiceNumber: "INV-DEMO-006",
			CreatedAt: created,
		},
	}
}
