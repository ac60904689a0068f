package migrations

import (
	"context"
	"fmt"

	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating image tables...")
			assetdb.RegisterModels(db)
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				for _, model := range []any{(*assetdb.Image)(nil), (*assetdb.Tag)(nil), (*assetdb.ArchivedImage)(nil)} {
					if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
						return fmt.Errorf("failed to create table for %T: %w", model, err)
					}
				}
				if _, err := tx.NewCreateTable().
					Model((*assetdb.ImageTag)(nil)).
					IfNotExists().
					ForeignKey(`(image_id) REFERENCES images (id) ON DELETE CASCADE`).
					ForeignKey(`(tag_id) REFERENCES tags (id) ON DELETE CASCADE`).
					Exec(ctx); err != nil {
					return fmt.Errorf("failed to create image_tags: %w", err)
				}
				if _, err := tx.ExecContext(ctx, `
					CREATE INDEX IF NOT EXISTS idx_images_category ON images (category);
					CREATE INDEX IF NOT EXISTS idx_images_archive_requested ON images (archive_requested_at) WHERE archive_path IS NOT NULL;
					CREATE INDEX IF NOT EXISTS idx_image_archive_log_archived_at ON image_archive_log (archived_at);
				`); err != nil {
					return fmt.Errorf("failed to create image indexes: %w", err)
				}
				fmt.Println("Image tables created successfully!")
				return nil
			})
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping image tables...")
			for _, table := range []string{"image_tags", "tags", "image_archive_log", "images"} {
				if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS ? CASCADE", bun.Ident(table)); err != nil {
					return fmt.Errorf("failed to drop %s: %w", table, err)
				}
			}
			return nil
		},
	)
}
