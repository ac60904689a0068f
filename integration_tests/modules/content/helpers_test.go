package content_test

import (
	"context"
	"testing"

	contentservice "github.com/Black-And-White-Club/club-cms/app/modules/content/application"
	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	sharedmetrics "github.com/Black-And-White-Club/club-cms/app/shared/metrics"
	"github.com/Black-And-White-Club/club-cms/integration_tests/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordingNotifier struct {
	changes []contentservice.ChangeNotice
}

func (n *recordingNotifier) NotifyChange(_ context.Context, change contentservice.ChangeNotice) error {
	n.changes = append(n.changes, change)
	return nil
}

type contentDeps struct {
	Service  *contentservice.ContentService
	Repo     contentdb.Repository
	Notifier *recordingNotifier
	Gen      *testutils.TestDataGenerator
}

func setupContent(t *testing.T) contentDeps {
	t.Helper()
	require.NoError(t, testEnv.Reset())

	repo := contentdb.NewRepository(testEnv.DB)
	notifier := &recordingNotifier{}
	svc := contentservice.NewContentService(
		repo, testEnv.Logger, sharedmetrics.NewNoop(), noop.NewTracerProvider().Tracer("test"), testEnv.DB, notifier,
	)
	return contentDeps{Service: svc, Repo: repo, Notifier: notifier, Gen: testutils.NewTestDataGenerator(42)}
}

func createAboutPage(t *testing.T, deps contentDeps) uuid.UUID {
	t.Helper()
	page, err := deps.Service.CreateContainer(context.Background(), &contentdb.AboutPage{
		Page: contentdb.Page{Title: deps.Gen.PageTitle()},
	})
	require.NoError(t, err)
	return page.GetID()
}

func createSponsor(t *testing.T, deps contentDeps, order int) uuid.UUID {
	t.Helper()
	rec, err := deps.Service.CreateEntity(context.Background(), &contentdb.Sponsor{
		Ordered: contentdb.Ordered{Order: order},
		Name:    deps.Gen.SponsorName(),
	})
	require.NoError(t, err)
	return rec.GetID()
}
