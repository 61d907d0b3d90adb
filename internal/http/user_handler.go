package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"verdict-api/internal/domain"
	"verdict-api/internal/repository"
	"verdict-api/internal/service"
)

// UserHandler mantiene dependencias para endpoints de perfil y listado.
type UserHandler struct {
	logger  *zap.Logger
	regServ *service.RegistrationService
	users   repository.UserRepository
}

func NewUserHandler(logger *zap.Logger, regServ *service.RegistrationService, users repository.UserRepository) *UserHandler {
	return &UserHandler{
		logger:  logger,
		regServ: regServ,
		users:   users,
	}
}

// UpdateProfile maneja PUT /user/profile. El request solo enlaza campos
// mutables: rol, email, flag de verificacion y hash quedan descartados
// aunque el cliente los mande.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondErr(c, http.StatusUnauthorized, "No token, authorization denied")
		return
	}

	var update domain.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn("invalid profile update request", zap.Error(err))
		respondErr(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.regServ.UpdateProfile(c.Request.Context(), claims.UserID, update)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondErr(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("profile update failed", zap.Error(err))
		respondErr(c, http.StatusInternalServerError, "Server error during profile update")
		return
	}

	respond(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}

// ListAttorneys maneja GET /attorneys. Listado publico de abogados
// verificados; el hash de password nunca se serializa.
func (h *UserHandler) ListAttorneys(c *gin.Context) {
	attorneys, err := h.users.ListVerifiedByRole(c.Request.Context(), domain.RoleAttorney)
	if err != nil {
		h.logger.Error("list attorneys failed", zap.Error(err))
		respondErr(c, http.StatusInternalServerError, "Server error fetching attorneys")
		return
	}

	respond(c, http.StatusOK, "", gin.H{"attorneys": attorneys})
}
