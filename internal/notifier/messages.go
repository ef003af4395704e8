package notifier

import (
	"booking-service/internal/model"
	"fmt"
	"strings"
)

// Mail templates kept in Romanian, matching the product's audience.

func pendingTeacherMail(b model.BookingDetails, switched bool) (string, string) {
	subject := fmt.Sprintf("Nouă lecție (PENDING): %s", b.SubjectName)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Salut, %s!\n\n", b.TeacherName)
	fmt.Fprintf(&sb, "Elevul %s (email: %s, tel: %s) s-a înscris pentru lecția demo:\n", b.StudentName, b.StudentEmail, phoneOrNA(b.StudentPhone))
	fmt.Fprintf(&sb, "- Materie: %s\n", b.SubjectName)
	fmt.Fprintf(&sb, "- Data: %s\n", model.DateKey(b.Date))
	fmt.Fprintf(&sb, "- Interval orar: %s\n", b.Timeslot)
	if switched {
		sb.WriteString("\nA fost redirecționat la dvs. deoarece alt profesor era ocupat.\n")
	}
	sb.WriteString("\nLecția este PENDING. Vom confirma când se formează grupul complet.")

	return subject, sb.String()
}

func pendingStudentMail(b model.BookingDetails, switched bool) (string, string) {
	subject := fmt.Sprintf("Confirmare înscriere lecție demo (PENDING) - %s", b.SubjectName)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Bună, %s!\n\n", b.StudentName)
	fmt.Fprintf(&sb, "Te-ai înscris la lecția demo (%s), data: %s, oră: %s\n", b.SubjectName, model.DateKey(b.Date), b.Timeslot)
	fmt.Fprintf(&sb, "Profesor: %s\n\n", b.TeacherName)
	sb.WriteString("Momentan ești în stadiu PENDING; vom confirma când se formează grupul complet.\n")
	if switched {
		sb.WriteString("Te-am repartizat la un alt profesor, deoarece cel inițial era ocupat.\n")
	}
	sb.WriteString("\nMulțumim!")

	return subject, sb.String()
}

func confirmedTeacherMail(bookings []model.BookingDetails) (string, string) {
	first := bookings[0]
	subject := fmt.Sprintf("Grup complet (%d elevi) CONFIRMAT pentru %s", len(bookings), first.SubjectName)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Salut, %s!\n\n", first.TeacherName)
	fmt.Fprintf(&sb, "S-au strâns %d elevi pentru lecția demo:\n", len(bookings))
	fmt.Fprintf(&sb, "- Materie: %s\n", first.SubjectName)
	fmt.Fprintf(&sb, "- Data: %s\n", model.DateKey(first.Date))
	fmt.Fprintf(&sb, "- Interval: %s\n\n", first.Timeslot)
	sb.WriteString("Elevi:\n")
	for _, b := range bookings {
		fmt.Fprintf(&sb, "• %s (%s, tel: %s)\n", b.StudentName, b.StudentEmail, phoneOrNA(b.StudentPhone))
	}
	sb.WriteString("\nLecția este CONFIRMED. Succes!")

	return subject, sb.String()
}

func confirmedStudentMail(b model.BookingDetails, groupSize int) (string, string) {
	subject := fmt.Sprintf("Lecția demo este CONFIRMATĂ: %s", b.SubjectName)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Bună, %s!\n\n", b.StudentName)
	fmt.Fprintf(&sb, "Felicitări, s-a format grupul complet (%d elevi) pentru:\n", groupSize)
	fmt.Fprintf(&sb, "- Materie: %s\n", b.SubjectName)
	fmt.Fprintf(&sb, "- Data: %s\n", model.DateKey(b.Date))
	fmt.Fprintf(&sb, "- Interval: %s\n", b.Timeslot)
	fmt.Fprintf(&sb, "- Profesor: %s\n\n", b.TeacherName)
	sb.WriteString("Ne vedem la lecție! Mult succes!")

	return subject, sb.String()
}

func phoneOrNA(phone *string) string {
	if phone == nil || *phone == "" {
		return "N/A"
	}
	return *phone
}
