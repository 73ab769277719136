package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/seoaudit/etl/internal/etl"
)

func makePages(n int, crawlID int64) []etl.Page {
	pages := make([]etl.Page, 0, n)
	for i := 0; i < n; i++ {
		pages = append(pages, etl.Page{
			CrawlID: crawlID,
			URL:     fmt.Sprintf("https://example.com/p%d", i),
		})
	}
	return pages
}

func TestLoadPagesSingleBatch(t *testing.T) {
	t.Parallel()

	sess, mock := newTestSession(t)
	store := NewPageStore(sess)

	batch := mock.ExpectBatch()
	for i := 0; i < 3; i++ {
		batch.ExpectExec("INSERT INTO pages").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	count, err := store.LoadPages(context.Background(), makePages(3, 42))
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadPagesChunksAtBatchSize(t *testing.T) {
	t.Parallel()

	sess, mock := newTestSession(t)
	store := NewPageStore(sess)

	// 2500 rows travel as 1000 + 1000 + 500.
	for _, size := range []int{batchSize, batchSize, 500} {
		batch := mock.ExpectBatch()
		for i := 0; i < size; i++ {
			batch.ExpectExec("INSERT INTO pages").
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
	}

	count, err := store.LoadPages(context.Background(), makePages(2500, 42))
	require.NoError(t, err)
	require.Equal(t, 2500, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadPagesCountsPresentedNotStored(t *testing.T) {
	t.Parallel()

	sess, mock := newTestSession(t)
	store := NewPageStore(sess)

	// Every row conflicts with an existing (crawl_id, url): zero rows
	// stored, but the reported count is still what was presented.
	batch := mock.ExpectBatch()
	for i := 0; i < 2; i++ {
		batch.ExpectExec("INSERT INTO pages").
			WillReturnResult(pgxmock.NewResult("INSERT", 0))
	}

	count, err := store.LoadPages(context.Background(), makePages(2, 42))
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadPagesEmptyInput(t *testing.T) {
	t.Parallel()

	sess, mock := newTestSession(t)
	store := NewPageStore(sess)

	count, err := store.LoadPages(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
