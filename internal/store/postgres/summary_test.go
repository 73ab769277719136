package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestCompleteCrawlStampsCountAndTime(t *testing.T) {
	t.Parallel()

	sess, mock := newTestSession(t)
	sum := NewCrawlSummarizer(sess, fixedClock{now: testNow})

	mock.ExpectExec("UPDATE crawls").
		WithArgs(3, testNow, int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, sum.CompleteCrawl(context.Background(), 11, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}
