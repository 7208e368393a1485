package services

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/paraphe-sign/internal/db/models"
	"github.com/paraphe-sign/internal/filestore"
	"github.com/paraphe-sign/internal/otp"
	"github.com/paraphe-sign/internal/store"
	"github.com/paraphe-sign/internal/templates"
	"github.com/paraphe-sign/pkg/metrics"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testPackageID = "pkg-1"
	testOwnerID   = "owner-1"
	fillerID      = "part-filler"
	signerID      = "part-signer"
	textFieldID   = "field-text"
	sigFieldID    = "field-sig"
	testFileRef   = "docs/agreement.pdf"
)

// sentPackage builds the standard fixture: a Sent package with a
// required text field for one participant and a required signature
// field for another.
func sentPackage() *models.Package {
	return &models.Package{
		ID:            testPackageID,
		Name:          "Lease Agreement",
		FileRef:       testFileRef,
		Status:        models.StatusSent,
		OwnerID:       testOwnerID,
		AllowReassign: true,
		Fields: []models.Field{
			{
				ID:        textFieldID,
				PackageID: testPackageID,
				Type:      models.FieldText,
				Page:      1,
				Required:  true,
				Assignments: []models.AssignedUser{{
					ID:            "assign-text",
					FieldID:       textFieldID,
					PackageID:     testPackageID,
					ParticipantID: fillerID,
					ContactID:     "contact-filler",
					ContactName:   "Frances Filler",
					ContactEmail:  "frances@example.com",
					Language:      "en",
					Role:          models.RoleFormFiller,
				}},
			},
			{
				ID:        sigFieldID,
				PackageID: testPackageID,
				Type:      models.FieldSignature,
				Page:      1,
				Required:  true,
				Assignments: []models.AssignedUser{{
					ID:             "assign-sig",
					FieldID:        sigFieldID,
					PackageID:      testPackageID,
					ParticipantID:  signerID,
					ContactID:      "contact-signer",
					ContactName:    "Sam Signer",
					ContactEmail:   "sam@example.com",
					ContactPhone:   "+32499000001",
					Language:       "en",
					Role:           models.RoleSigner,
					AllowedMethods: models.MethodList{models.MethodEmailOTP, models.MethodSMSOTP},
				}},
			},
		},
	}
}

type fakeGateway struct {
	mu         sync.Mutex
	recipients []string
	messages   []string
	err        error
}

func (g *fakeGateway) Send(ctx context.Context, recipient, message string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	g.recipients = append(g.recipients, recipient)
	g.messages = append(g.messages, message)
	return "msg-1", nil
}

var codePattern = regexp.MustCompile(`\d{6}`)

func (g *fakeGateway) lastCode(t *testing.T) string {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.messages)
	code := codePattern.FindString(g.messages[len(g.messages)-1])
	require.NotEmpty(t, code)
	return code
}

func (g *fakeGateway) lastRecipient(t *testing.T) string {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.recipients)
	return g.recipients[len(g.recipients)-1]
}

type testEnv struct {
	store      *store.Memory
	files      *filestore.Memory
	email      *fakeGateway
	sms        *fakeGateway
	packages   *PackageService
	signatures *SignatureService
	reassign   *ReassignService
}

func newTestEnv(t *testing.T, pkg *models.Package) *testEnv {
	t.Helper()

	st := store.NewMemory()
	require.NoError(t, st.CreatePackage(context.Background(), pkg))

	files := filestore.NewMemory()
	files.Put(pkg.FileRef, []byte("%PDF-1.4\ncontent\n%%EOF\n"))

	logger := zap.NewNop()
	collector := metrics.NewMetricsCollector()
	email := &fakeGateway{}
	sms := &fakeGateway{}
	codes := otp.NewStore(60*time.Second, 5, nil)

	return &testEnv{
		store:      st,
		files:      files,
		email:      email,
		sms:        sms,
		packages:   NewPackageService(st, files, logger, collector),
		signatures: NewSignatureService(st, codes, email, sms, templates.NewStore(), "32", logger, collector),
		reassign:   NewReassignService(st, logger, collector),
	}
}

func stringValue(s string) models.FieldValue {
	return models.FieldValue{Kind: models.ValueString, String: s}
}
