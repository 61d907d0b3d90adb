package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"verdict-api/internal/domain"
	"verdict-api/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticacion.
type AuthHandler struct {
	logger   *zap.Logger
	regServ  *service.RegistrationService
	tokenSvc *service.TokenService
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, regServ *service.RegistrationService, tokenSvc *service.TokenService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		regServ:  regServ,
		tokenSvc: tokenSvc,
	}
}

// Signup maneja POST /auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
		License  string `json:"license"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signup request", zap.Error(err))
		respondErr(c, http.StatusBadRequest, "Please provide all required fields")
		return
	}

	receipt, err := h.regServ.InitiateRegistration(c.Request.Context(), service.SignupInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Role:          domain.Role(req.Role),
		LicenseNumber: req.License,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondErr(c, http.StatusBadRequest, "Please provide all required fields")
		case errors.Is(err, service.ErrInvalidRole):
			respondErr(c, http.StatusBadRequest, "Invalid role")
		case errors.Is(err, service.ErrEmailTaken):
			respondErr(c, http.StatusBadRequest, "Email already registered")
		default:
			h.logger.Error("signup failed", zap.Error(err))
			respondErr(c, http.StatusInternalServerError, "Server error during signup")
		}
		return
	}

	respond(c, http.StatusOK, "Verification code sent to your email", gin.H{
		"email":     receipt.Email,
		"emailSent": receipt.EmailSent,
	})
}

// VerifyOTP maneja POST /auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp verify request", zap.Error(err))
		respondErr(c, http.StatusBadRequest, "Please provide email and verification code")
		return
	}

	user, err := h.regServ.VerifyCode(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondErr(c, http.StatusBadRequest, "Please provide email and verification code")
		case errors.Is(err, service.ErrOTPInvalid):
			respondErr(c, http.StatusUnauthorized, "Invalid verification code")
		case errors.Is(err, service.ErrOTPExpired):
			respondErr(c, http.StatusBadRequest, "Verification code expired")
		case errors.Is(err, service.ErrEmailTaken):
			respondErr(c, http.StatusBadRequest, "Email already registered")
		default:
			h.logger.Error("verify otp failed", zap.Error(err))
			respondErr(c, http.StatusInternalServerError, "Server error during verification")
		}
		return
	}

	token, err := h.tokenSvc.Issue(user)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		respondErr(c, http.StatusInternalServerError, "Server error during verification")
		return
	}
	respond(c, http.StatusCreated, "Account created successfully", gin.H{
		"token": token,
		"user":  user,
	})
}

// ResendOTP maneja POST /auth/resend-otp.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp resend request", zap.Error(err))
		respondErr(c, http.StatusBadRequest, "Please provide email")
		return
	}

	emailSent, err := h.regServ.ResendCode(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPendingNotFound):
			respondErr(c, http.StatusNotFound, "No pending registration found")
		case errors.Is(err, service.ErrRateLimited):
			respondErr(c, http.StatusTooManyRequests, "Too many requests, try again later")
		default:
			h.logger.Error("resend otp failed", zap.Error(err))
			respondErr(c, http.StatusInternalServerError, "Server error during resend")
		}
		return
	}

	respond(c, http.StatusOK, "Verification code sent to your email", gin.H{
		"emailSent": emailSent,
	})
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		respondErr(c, http.StatusBadRequest, "Please provide email and password")
		return
	}

	user, err := h.regServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondErr(c, http.StatusBadRequest, "Please provide email and password")
		case errors.Is(err, service.ErrInvalidCredentials):
			respondErr(c, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, service.ErrUnverifiedAccount):
			respondErr(c, http.StatusForbidden, "Please verify your email first")
		default:
			h.logger.Error("login failed", zap.Error(err))
			respondErr(c, http.StatusInternalServerError, "Server error during login")
		}
		return
	}

	token, err := h.tokenSvc.Issue(user)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		respondErr(c, http.StatusInternalServerError, "Server error during login")
		return
	}
	respond(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}
