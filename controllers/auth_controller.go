// controllers/auth_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/floracart/floracart_backend/middleware"
	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/utils"
)

// AuthController handles signup and login for customers, sellers and operators
type AuthController struct {
	DB *mongo.Database
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Database) *AuthController {
	return &AuthController{DB: db}
}

// Signup registers a new customer account
func (ac *AuthController) Signup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email address",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	now := time.Now()
	user := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  utils.SanitizeInput(req.FullName),
		Email:     email,
		Password:  string(hashedPassword),
		Phone:     utils.SanitizeInput(req.Phone),
		UserType:  models.UserTypeCustomer,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := ac.DB.Collection("users").InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "An account with this email already exists",
			})
		}
		log.Printf("Failed to insert user: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Account created successfully",
		Data:    user,
	})
}

// SellerSignup registers a new seller account with the default commission terms
func (ac *AuthController) SellerSignup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.SellerSignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email address",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	now := time.Now()
	seller := models.Seller{
		ID:                  primitive.NewObjectID(),
		StoreName:           utils.SanitizeInput(req.StoreName),
		OwnerName:           utils.SanitizeInput(req.OwnerName),
		Email:               email,
		Password:            string(hashedPassword),
		Phone:               utils.SanitizeInput(req.Phone),
		CommissionThreshold: models.DefaultCommissionThreshold,
		CommissionRate:      models.DefaultCommissionRate,
		AccountStatus:       models.SellerStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if _, err := ac.DB.Collection("sellers").InsertOne(ctx, seller); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "A seller account with this email already exists",
			})
		}
		log.Printf("Failed to insert seller: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	seller.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Seller account created successfully",
		Data:    seller,
	})
}

// Login authenticates a customer, seller or operator and issues JWT tokens
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email address",
		})
	}

	userType := req.UserType
	if userType == "" {
		userType = models.UserTypeCustomer
	}

	if userType == models.UserTypeSeller {
		return ac.loginSeller(ctx, c, email, req.Password)
	}
	return ac.loginUser(ctx, c, email, req.Password, userType)
}

func (ac *AuthController) loginUser(ctx context.Context, c echo.Context, email, password, userType string) error {
	var user models.User
	err := ac.DB.Collection("users").FindOne(ctx, bson.M{"email": email, "userType": userType}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to log in",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged in successfully",
		Data: models.LoginResponse{
			Token:        token,
			RefreshToken: refreshToken,
			User:         user,
		},
	})
}

func (ac *AuthController) loginSeller(ctx context.Context, c echo.Context, email, password string) error {
	var seller models.Seller
	err := ac.DB.Collection("sellers").FindOne(ctx, bson.M{"email": email}).Decode(&seller)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(seller.Password), []byte(password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	// Suspended sellers may still log in to see and settle their balance;
	// manually deactivated sellers may not.
	if seller.AccountStatus == models.SellerStatusDeactivated {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "This seller account has been deactivated. Contact support.",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(seller.ID.Hex(), seller.Email, models.UserTypeSeller)
	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to log in",
		})
	}

	seller.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged in successfully",
		Data: models.LoginResponse{
			Token:        token,
			RefreshToken: refreshToken,
			User:         seller,
		},
	})
}
