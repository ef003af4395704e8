package api

import (
	"booking-service/internal/model"
	"booking-service/internal/repository"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the read-only subject and teacher lists the booking
// wizard drives its dropdowns from. Rows are seeded out of band; nothing
// here mutates them.
type CatalogHandler struct {
	subjectRepo repository.SubjectRepository
	teacherRepo repository.TeacherRepository
}

func NewCatalogHandler(subjectRepo repository.SubjectRepository, teacherRepo repository.TeacherRepository) *CatalogHandler {
	return &CatalogHandler{subjectRepo: subjectRepo, teacherRepo: teacherRepo}
}

func (h *CatalogHandler) ListSubjects(c *fiber.Ctx) error {
	subjects, err := h.subjectRepo.List(c.Context())
	if err != nil {
		slog.ErrorContext(c.UserContext(), "Error fetching subjects", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Eroare la încărcarea subiectelor."})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"subjects": subjects})
}

func (h *CatalogHandler) ListTeachers(c *fiber.Ctx) error {
	subjectIDStr := c.Query("subjectId")

	var (
		teachers []model.Teacher
		err      error
	)

	if subjectIDStr != "" {
		subjectID, parseErr := strconv.ParseInt(subjectIDStr, 10, 64)
		if parseErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid subjectId format"})
		}
		teachers, err = h.teacherRepo.ListBySubject(c.Context(), subjectID)
	} else {
		teachers, err = h.teacherRepo.List(c.Context())
	}

	if err != nil {
		slog.ErrorContext(c.UserContext(), "Error fetching teachers", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Eroare la încărcarea profesorilor."})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"teachers": teachers})
}
