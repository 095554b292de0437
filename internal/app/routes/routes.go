package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nazrin/tadikahub/internal/app/controllers"
	"github.com/nazrin/tadikahub/internal/app/models"
	"github.com/nazrin/tadikahub/internal/app/models/dto"
	"github.com/nazrin/tadikahub/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	registrationController *controllers.RegistrationController,
	documentController *controllers.DocumentController,
	invoiceController *controllers.InvoiceController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	// --- Public Registration routes ---
	// Guardians submit and track applications without an account.
	registrations := v1.Group("/registrations")
	{
		registrations.POST("", registrationController.SubmitApplication)
		registrations.GET("/lookup", registrationController.LookupApplication)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		registrationsProtected := authenticated.Group("/registrations")
		{
			registrationsProtected.GET("", registrationController.ListApplications)

			// Review decisions are restricted to backoffice roles.
			registrationsReviewProtected := registrationsProtected.Group("")
			registrationsReviewProtected.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleOfficer))
			{
				registrationsReviewProtected.POST("/:id/review",
					middleware.ValidateRequest(dto.ReviewApplicationRequest{}),
					registrationController.ReviewApplication)
			}
		}

		documents := authenticated.Group("/documents")
		{
			documents.GET("/:id/download", documentController.DownloadDocument)

			documentsVerifyProtected := documents.Group("")
			documentsVerifyProtected.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleOfficer))
			{
				documentsVerifyProtected.POST("/:id/verify",
					middleware.ValidateRequest(dto.VerifyDocumentRequest{}),
					documentController.VerifyDocument)
			}
		}

		invoices := authenticated.Group("/invoices")
		{
			invoices.GET("/amounts", invoiceController.GetAmounts)
			invoices.GET("/:number/amount", invoiceController.GetAmount)
			invoices.POST("/:number/payments",
				middleware.ValidateRequest(dto.PostPaymentRequest{}),
				invoiceController.PostPayment)
		}
	}
}
