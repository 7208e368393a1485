package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/paraphe-sign/internal/api"
	"github.com/paraphe-sign/internal/config"
	"github.com/paraphe-sign/internal/db"
	"github.com/paraphe-sign/internal/db/models"
	"github.com/paraphe-sign/internal/filestore"
	"github.com/paraphe-sign/internal/gateway"
	"github.com/paraphe-sign/internal/otp"
	"github.com/paraphe-sign/internal/services"
	"github.com/paraphe-sign/internal/store"
	"github.com/paraphe-sign/internal/templates"
	"github.com/paraphe-sign/pkg/logger"
	"github.com/paraphe-sign/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zapLogger, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	config.LogConfig(cfg, zapLogger)

	var packageStore store.PackageStore
	var files filestore.FileStore

	if cfg.Database.Disabled {
		zapLogger.Warn("Running without a database, state is in-memory only")
		memStore := store.NewMemory()
		memFiles := filestore.NewMemory()
		packageStore = memStore
		files = memFiles
		if os.Getenv("SEED_DEMO") == "true" {
			seedDemo(memStore, memFiles, zapLogger)
		}
	} else {
		database, err := db.Initialize(cfg)
		if err != nil {
			zapLogger.Fatal("Failed to initialize database", zap.Error(err))
		}
		packageStore = store.NewGorm(database)
		files = filestore.NewDisk(cfg.Files.Root)
		defer func() {
			if sqlDB, err := database.DB(); err == nil {
				sqlDB.Close()
			}
		}()
	}

	metricsCollector := metrics.NewMetricsCollector()
	codeStore := otp.NewStore(cfg.Otp.TTL, cfg.Otp.MaxAttempts, nil)
	templateStore := templates.NewStore()
	emailGateway := gateway.NewSmtpGateway(cfg.Smtp, zapLogger)
	smsGateway := gateway.NewSmsGateway(cfg.Sms, zapLogger)

	packageService := services.NewPackageService(packageStore, files, zapLogger, metricsCollector)
	signatureService := services.NewSignatureService(packageStore, codeStore, emailGateway, smsGateway,
		templateStore, cfg.Sms.DefaultCountryCode, zapLogger, metricsCollector)
	reassignService := services.NewReassignService(packageStore, zapLogger, metricsCollector)

	router := api.NewRouter(zapLogger, metricsCollector, packageService, signatureService, reassignService)
	router.SetupRoutes()

	go func() {
		if err := router.Run(":" + cfg.Server.Port); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Server gracefully stopped")
}

// seedDemo loads one sendable package so the participant flow can be
// exercised against the in-memory mode.
func seedDemo(packages *store.Memory, files *filestore.Memory, logger *zap.Logger) {
	pkgID := uuid.New().String()
	signerID := uuid.New().String()
	fillerID := uuid.New().String()
	textFieldID := uuid.New().String()
	signatureFieldID := uuid.New().String()
	fileRef := "demo/agreement.pdf"

	files.Put(fileRef, []byte("%PDF-1.4\n%demo document\n%%EOF\n"))

	pkg := &models.Package{
		ID:                    pkgID,
		Name:                  "Demo Agreement",
		FileRef:               fileRef,
		Status:                models.StatusSent,
		OwnerID:               uuid.New().String(),
		AllowReassign:         true,
		AllowDownloadUnsigned: true,
		Fields: []models.Field{
			{
				ID:        textFieldID,
				PackageID: pkgID,
				Type:      models.FieldText,
				Page:      1,
				Required:  true,
				Assignments: []models.AssignedUser{{
					ID:            uuid.New().String(),
					FieldID:       textFieldID,
					PackageID:     pkgID,
					ParticipantID: fillerID,
					ContactName:   "Frances Filler",
					ContactEmail:  "frances@example.com",
					Role:          models.RoleFormFiller,
				}},
			},
			{
				ID:        signatureFieldID,
				PackageID: pkgID,
				Type:      models.FieldSignature,
				Page:      1,
				Required:  true,
				Assignments: []models.AssignedUser{{
					ID:             uuid.New().String(),
					FieldID:        signatureFieldID,
					PackageID:      pkgID,
					ParticipantID:  signerID,
					ContactName:    "Sam Signer",
					ContactEmail:   "sam@example.com",
					ContactPhone:   "+32499000001",
					Role:           models.RoleSigner,
					AllowedMethods: models.MethodList{models.MethodEmailOTP, models.MethodSMSOTP},
				}},
			},
		},
	}

	if err := packages.CreatePackage(context.Background(), pkg); err != nil {
		logger.Error("Failed to seed demo package", zap.Error(err))
		return
	}
	logger.Info("Seeded demo package",
		zap.String("package_id", pkgID),
		zap.String("signer_participant_id", signerID),
		zap.String("filler_participant_id", fillerID))
}
