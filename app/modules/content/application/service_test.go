package contentservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	sharedmetrics "github.com/Black-And-White-Club/club-cms/app/shared/metrics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(repo *FakeContentRepo) (*ContentService, *FakeNotifier) {
	notifier := &FakeNotifier{}
	svc := NewContentService(repo, slog.Default(), sharedmetrics.NewNoop(), noop.NewTracerProvider().Tracer("test"), nil, notifier)
	return svc, notifier
}

func sponsor(name string, order int) *contentdb.Sponsor {
	return &contentdb.Sponsor{Ordered: contentdb.Ordered{Order: order}, Name: name}
}

func aboutPage(t *testing.T, svc *ContentService, title string) uuid.UUID {
	t.Helper()
	page, err := svc.CreateContainer(context.Background(), &contentdb.AboutPage{Page: contentdb.Page{Title: title}})
	require.NoError(t, err)
	return page.GetID()
}

func TestContentService_ScenarioA_SponsorOrderPerContainer(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeContentRepo()
	svc, _ := newTestService(repo)

	p1 := aboutPage(t, svc, "About Us")
	p2 := aboutPage(t, svc, "Our Story")

	s1, err := svc.CreateEntity(ctx, sponsor("Acme Mats", 0))
	require.NoError(t, err)
	added, err := svc.AddMembers(ctx, contentdb.AboutPageSponsors, p1, []uuid.UUID{s1.GetID()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{s1.GetID()}, added)

	s2, err := svc.CreateEntity(ctx, sponsor("Gi Supply", 0))
	require.NoError(t, err)
	_, err = svc.AddMembers(ctx, contentdb.AboutPageSponsors, p1, []uuid.UUID{s2.GetID()})
	require.Error(t, err)

	var conflict *OrderConflict
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, s2.GetID(), conflict.EntityID)
	assert.Equal(t, p1, conflict.ContainerID)
	assert.Equal(t, `Order [0] of Sponsor [Gi Supply] already used by another Sponsor in the AboutPage "About Us".`, conflict.Error())
	assert.Equal(t, "order", conflict.Field())

	_, err = svc.AddMembers(ctx, contentdb.AboutPageSponsors, p2, []uuid.UUID{s2.GetID()})
	assert.NoError(t, err)
}

func TestContentService_AddMembers(t *testing.T) {
	tests := []struct {
		name      string
		existing  []int
		batch     []int
		wantErr   bool
		wantAdded int
	}{
		{name: "distinct orders", existing: []int{0, 1}, batch: []int{2, 3}, wantAdded: 2},
		{name: "batch collides with existing member", existing: []int{0, 1}, batch: []int{2, 1}, wantErr: true},
		{name: "batch collides with itself", existing: nil, batch: []int{4, 4}, wantErr: true},
		{name: "empty container", existing: nil, batch: []int{0}, wantAdded: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewFakeContentRepo()
			svc, notifier := newTestService(repo)
			page := aboutPage(t, svc, "About")

			var existingIDs []uuid.UUID
			for i, order := range tt.existing {
				rec, err := svc.CreateEntity(ctx, sponsor("existing-"+string(rune('a'+i)), order))
				require.NoError(t, err)
				existingIDs = append(existingIDs, rec.GetID())
			}
			if len(existingIDs) > 0 {
				_, err := svc.AddMembers(ctx, contentdb.AboutPageSponsors, page, existingIDs)
				require.NoError(t, err)
			}
			notifier.changes = nil

			var batch []uuid.UUID
			for i, order := range tt.batch {
				rec, err := svc.CreateEntity(ctx, sponsor("new-"+string(rune('a'+i)), order))
				require.NoError(t, err)
				batch = append(batch, rec.GetID())
			}
			notifier.changes = nil

			added, err := svc.AddMembers(ctx, contentdb.AboutPageSponsors, page, batch)
			if tt.wantErr {
				var conflict *OrderConflict
				assert.ErrorAs(t, err, &conflict)
				assert.Empty(t, notifier.changes, "rejected batch must not be announced")
				return
			}
			require.NoError(t, err)
			assert.Len(t, added, tt.wantAdded)
			require.Len(t, notifier.changes, 1)
			assert.Equal(t, ActionMembersAdded, notifier.changes[0].Action)
		})
	}
}

func TestContentService_AddMembers_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown container", func(t *testing.T) {
		repo := NewFakeContentRepo()
		svc, _ := newTestService(repo)
		rec, err := svc.CreateEntity(ctx, sponsor("A", 0))
		require.NoError(t, err)

		_, err = svc.AddMembers(ctx, contentdb.AboutPageSponsors, uuid.New(), []uuid.UUID{rec.GetID()})
		assert.ErrorIs(t, err, contentdb.ErrNotFound)
		assert.NotContains(t, repo.Trace(), "AddMembers")
	})

	t.Run("missing entity rejects whole batch", func(t *testing.T) {
		repo := NewFakeContentRepo()
		svc, _ := newTestService(repo)
		page := aboutPage(t, svc, "About")
		rec, err := svc.CreateEntity(ctx, sponsor("A", 0))
		require.NoError(t, err)

		_, err = svc.AddMembers(ctx, contentdb.AboutPageSponsors, page, []uuid.UUID{rec.GetID(), uuid.New()})
		assert.ErrorIs(t, err, contentdb.ErrNotFound)
		assert.Empty(t, repo.members(contentdb.AboutPageSponsors, page))
	})

	t.Run("empty batch", func(t *testing.T) {
		repo := NewFakeContentRepo()
		svc, _ := newTestService(repo)
		page := aboutPage(t, svc, "About")

		_, err := svc.AddMembers(ctx, contentdb.AboutPageSponsors, page, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("repository error is not a domain failure", func(t *testing.T) {
		repo := NewFakeContentRepo()
		svc, _ := newTestService(repo)
		page := aboutPage(t, svc, "About")
		repo.AddMembersFunc = func(ctx context.Context, db bun.IDB, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
			return nil, errors.New("connection reset")
		}

		_, err := svc.AddMembers(ctx, contentdb.AboutPageSponsors, page, []uuid.UUID{uuid.New()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AddMembers: connection reset")
	})
}

func TestContentService_UpdateEntity_DirectSave(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeContentRepo()
	svc, notifier := newTestService(repo)
	page := aboutPage(t, svc, "About")
	other := aboutPage(t, svc, "Elsewhere")

	a, err := svc.CreateEntity(ctx, sponsor("A", 0))
	require.NoError(t, err)
	b, err := svc.CreateEntity(ctx, sponsor("B", 1))
	require.NoError(t, err)
	_, err = svc.AddMembers(ctx, contentdb.AboutPageSponsors, page, []uuid.UUID{a.GetID(), b.GetID()})
	require.NoError(t, err)

	t.Run("colliding order is rejected", func(t *testing.T) {
		update := sponsor("B", 0)
		update.ID = b.GetID()
		_, err := svc.UpdateEntity(ctx, update)
		var conflict *OrderConflict
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "About", conflict.ContainerDisplayName)
	})

	t.Run("order reuse in another container only", func(t *testing.T) {
		c, err := svc.CreateEntity(ctx, sponsor("C", 0))
		require.NoError(t, err)
		_, err = svc.AddMembers(ctx, contentdb.AboutPageSponsors, other, []uuid.UUID{c.GetID()})
		require.NoError(t, err)

		update := sponsor("C", 0)
		update.ID = c.GetID()
		_, err = svc.UpdateEntity(ctx, update)
		assert.NoError(t, err)
	})

	t.Run("unassociated entity cannot conflict", func(t *testing.T) {
		d, err := svc.CreateEntity(ctx, sponsor("D", 5))
		require.NoError(t, err)
		update := sponsor("D", 0)
		update.ID = d.GetID()
		notifier.changes = nil

		_, err = svc.UpdateEntity(ctx, update)
		require.NoError(t, err)
		require.Len(t, notifier.changes, 1)
		assert.Equal(t, ActionUpdated, notifier.changes[0].Action)
	})

	t.Run("negative order", func(t *testing.T) {
		update := sponsor("A", -1)
		update.ID = a.GetID()
		_, err := svc.UpdateEntity(ctx, update)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing entity", func(t *testing.T) {
		update := sponsor("Ghost", 9)
		update.ID = uuid.New()
		_, err := svc.UpdateEntity(ctx, update)
		assert.ErrorIs(t, err, contentdb.ErrNotFound)
	})
}

func TestContentService_UpdateEntity_SyncsJoinOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeContentRepo()
	svc, _ := newTestService(repo)

	var synced []string
	repo.SyncMemberOrderFunc = func(ctx context.Context, db bun.IDB, assoc contentdb.Association, entityID uuid.UUID, order int) error {
		synced = append(synced, assoc.Name)
		return nil
	}

	rec, err := svc.CreateEntity(ctx, sponsor("A", 0))
	require.NoError(t, err)
	update := sponsor("A", 3)
	update.ID = rec.GetID()
	_, err = svc.UpdateEntity(ctx, update)
	require.NoError(t, err)

	assert.Equal(t, []string{"about_page_sponsors", "home_page_sponsors"}, synced)
}

func TestContentService_RemoveMembers_RelaxesInvariant(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeContentRepo()
	svc, _ := newTestService(repo)
	page := aboutPage(t, svc, "About")

	s1, err := svc.CreateEntity(ctx, sponsor("S1", 0))
	require.NoError(t, err)
	s2, err := svc.CreateEntity(ctx, sponsor("S2", 0))
	require.NoError(t, err)

	_, err = svc.AddMembers(ctx, contentdb.AboutPageSponsors, page, []uuid.UUID{s1.GetID()})
	require.NoError(t, err)

	removed, err := svc.RemoveMembers(ctx, contentdb.AboutPageSponsors, page, []uuid.UUID{s1.GetID()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{s1.GetID()}, removed)

	_, err = svc.AddMembers(ctx, contentdb.AboutPageSponsors, page, []uuid.UUID{s2.GetID()})
	assert.NoError(t, err)
}

func TestContentService_DeleteContainer_KeepsMembers(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeContentRepo()
	svc, _ := newTestService(repo)
	page := aboutPage(t, svc, "About")

	s1, err := svc.CreateEntity(ctx, sponsor("S1", 0))
	require.NoError(t, err)
	_, err = svc.AddMembers(ctx, contentdb.AboutPageSponsors, page, []uuid.UUID{s1.GetID()})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteContainer(ctx, contentdb.ContainerAboutPage, page))

	got, err := svc.GetEntity(ctx, contentdb.EntitySponsor, s1.GetID())
	require.NoError(t, err)
	assert.Equal(t, "S1", got.DisplayName())

	_, err = svc.ListMembers(ctx, contentdb.AboutPageSponsors, page)
	assert.ErrorIs(t, err, contentdb.ErrNotFound)
}

func TestContentService_ListMembers_Ordered(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeContentRepo()
	svc, _ := newTestService(repo)
	page := aboutPage(t, svc, "About")

	var ids []uuid.UUID
	for _, order := range []int{2, 0, 1} {
		rec, err := svc.CreateEntity(ctx, sponsor("S", order))
		require.NoError(t, err)
		ids = append(ids, rec.GetID())
	}
	_, err := svc.AddMembers(ctx, contentdb.AboutPageSponsors, page, ids)
	require.NoError(t, err)

	members, err := svc.ListMembers(ctx, contentdb.AboutPageSponsors, page)
	require.NoError(t, err)
	require.Len(t, members, 3)
	for i, m := range members {
		assert.Equal(t, i, m.Order)
	}
}

func TestContentService_DeleteEntity(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeContentRepo()
	svc, notifier := newTestService(repo)

	rec, err := svc.CreateEntity(ctx, sponsor("A", 0))
	require.NoError(t, err)
	notifier.changes = nil

	require.NoError(t, svc.DeleteEntity(ctx, contentdb.EntitySponsor, rec.GetID()))
	assert.Equal(t, []ChangeNotice{{Action: ActionDeleted, Subject: "Sponsor", SubjectID: rec.GetID()}}, notifier.changes)

	err = svc.DeleteEntity(ctx, contentdb.EntitySponsor, rec.GetID())
	assert.ErrorIs(t, err, contentdb.ErrNotFound)
}

func TestContentService_NotifierFailureDoesNotFailOperation(t *testing.T) {
	repo := NewFakeContentRepo()
	svc, notifier := newTestService(repo)
	notifier.err = errors.New("bus down")

	_, err := svc.CreateEntity(context.Background(), sponsor("A", 0))
	assert.NoError(t, err)
}

func TestContentService_RenderEnumerations(t *testing.T) {
	tests := []struct {
		name      string
		render    *contentdb.Render
		wantField string
	}{
		{name: "navbar with position", render: &contentdb.Render{Name: "Top", Type: contentdb.RenderNavBar, NavBarPosition: contentdb.NavBarRight}},
		{name: "section without position", render: &contentdb.Render{Name: "Hero", Type: contentdb.RenderSection}},
		{name: "unknown type", render: &contentdb.Render{Name: "Odd", Type: "carousel", NavBarPosition: contentdb.NavBarLeft}, wantField: "type"},
		{name: "empty type", render: &contentdb.Render{Name: "Blank"}, wantField: "type"},
		{name: "navbar without position", render: &contentdb.Render{Name: "Top", Type: contentdb.RenderNavBar}, wantField: "nav_bar_position"},
		{name: "unknown position", render: &contentdb.Render{Name: "Top", Type: contentdb.RenderBanner, NavBarPosition: "top"}, wantField: "nav_bar_position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeContentRepo()
			svc, _ := newTestService(repo)

			_, err := svc.CreateEntity(context.Background(), tt.render)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var invalid *InvalidValue
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantField, invalid.Field())
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.NotContains(t, repo.Trace(), "InsertEntity")
		})
	}
}

func TestContentService_UpdateEntity_RejectsUnknownRenderType(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeContentRepo()
	svc, _ := newTestService(repo)

	created, err := svc.CreateEntity(ctx, navRender("Primary", false, true))
	require.NoError(t, err)

	update := navRender("Primary", false, true)
	update.ID = created.GetID()
	update.Type = "sidebar"
	_, err = svc.UpdateEntity(ctx, update)
	var invalid *InvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "type", invalid.Field())

	stored, err := svc.GetEntity(ctx, contentdb.EntityRender, created.GetID())
	require.NoError(t, err)
	assert.Equal(t, contentdb.RenderNavBar, stored.(*contentdb.Render).Type)
}
