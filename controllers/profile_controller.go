// controllers/profile_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/repositories"
	"github.com/floracart/floracart_backend/utils"
)

// ProfileController handles the seller's own store profile
type ProfileController struct {
	Sellers *repositories.SellerRepository
}

// NewProfileController creates a new profile controller
func NewProfileController(sellers *repositories.SellerRepository) *ProfileController {
	return &ProfileController{Sellers: sellers}
}

// SellerProfileRequest is the request body for profile updates; empty fields
// are left unchanged
type SellerProfileRequest struct {
	StoreName   string `json:"storeName" form:"storeName"`
	OwnerName   string `json:"ownerName" form:"ownerName"`
	Phone       string `json:"phone" form:"phone"`
	Description string `json:"description" form:"description"`
}

// GetProfile returns the calling seller's store profile
func (pc *ProfileController) GetProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	seller, err := pc.Sellers.FindByID(ctx, sellerID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Seller not found",
			})
		}
		log.Printf("Failed to load seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve profile",
		})
	}

	seller.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    seller,
	})
}

// UpdateProfile updates the calling seller's store details
func (pc *ProfileController) UpdateProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req SellerProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	err = pc.Sellers.UpdateProfile(ctx, sellerID,
		utils.SanitizeInput(req.StoreName),
		utils.SanitizeInput(req.OwnerName),
		utils.SanitizeInput(req.Phone),
		utils.SanitizeInput(req.Description))
	if err != nil {
		log.Printf("Failed to update profile for seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update profile",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile updated successfully",
	})
}

// UploadLogo replaces the calling seller's store logo
func (pc *ProfileController) UploadLogo(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No logo file provided",
		})
	}

	logoPath, _, err := utils.SaveUploadedImage(file, "uploads/logos")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid logo image: " + err.Error(),
		})
	}

	if err := pc.Sellers.UpdateLogo(ctx, sellerID, logoPath); err != nil {
		log.Printf("Failed to update logo for seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update logo",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logo updated successfully",
		Data:    map[string]string{"logo": logoPath},
	})
}
