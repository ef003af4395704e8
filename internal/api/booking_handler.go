package api

import (
	"booking-service/internal/model"
	"booking-service/internal/service"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type BookingHandler struct {
	bookingService service.BookingService
	validate       *validator.Validate
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		validate:       validator.New(),
	}
}

// SubmitBookingRequest carries the booking wizard's final payload. Field
// names match the frontend form contract.
type SubmitBookingRequest struct {
	SubjectID int64  `json:"subjectId" validate:"required"`
	TeacherID int64  `json:"teacherId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Timeslot  string `json:"timeslot" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty"`
}

func (h *BookingHandler) SubmitBooking(c *fiber.Ctx) error {
	var request SubmitBookingRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Date incomplete! (subjectId, teacherId, date, timeslot, name, email)",
			"details": err.Error(),
		})
	}

	if !model.IsValidTimeslot(request.Timeslot) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Interval orar invalid."})
	}

	date, err := time.Parse("2006-01-02", request.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Dată invalidă."})
	}

	input := service.SubmitBookingInput{
		SubjectID:    request.SubjectID,
		TeacherID:    request.TeacherID,
		Date:         date,
		Timeslot:     request.Timeslot,
		StudentName:  request.Name,
		StudentEmail: request.Email,
	}
	if request.Phone != "" {
		input.StudentPhone = &request.Phone
	}

	result, err := h.bookingService.SubmitBooking(c.Context(), input)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubjectNotFound), errors.Is(err, service.ErrTeacherNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, service.ErrNoCapacity):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Toți profesorii sunt ocupați la data/ora selectată.",
			})
		default:
			slog.ErrorContext(c.UserContext(), "Error booking", slog.String("error", err.Error()))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Eroare de server. Încercați mai târziu.",
			})
		}
	}

	if result.Switched {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success":         true,
			"switchedTeacher": result.Booking.TeacherID,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	bookingID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid booking ID format"})
	}

	if err := h.bookingService.CancelBooking(c.Context(), bookingID); err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}

		slog.ErrorContext(c.UserContext(), "Error canceling booking", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Eroare de server. Încercați mai târziu.",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
