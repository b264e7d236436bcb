package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltgrid/gc-registry/internal/certificate/domain"
)

func seedQueryFixtures(t *testing.T, env *testEnv) (early, late, otherDevice, cancelled *domain.GranularCertificateBundle) {
	t.Helper()
	dayOne := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	dayTwo := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	early = env.seedBundle(t, 100, 42, 1, 100, domain.StatusActive, dayOne)
	late = env.seedBundle(t, 100, 42, 101, 100, domain.StatusActive, dayTwo)
	otherDevice = env.seedBundle(t, 100, 43, 1, 100, domain.StatusActive, dayOne)
	cancelled = env.seedBundle(t, 100, 44, 1, 100, domain.StatusCancelled, dayOne)
	return early, late, otherDevice, cancelled
}

func TestQuery_SourceOnlyReturnsAllStatuses(t *testing.T) {
	env := newTestEnv(t, "query_source")
	seedQueryFixtures(t, env)

	// No implicit status filter: cancelled bundles come back too.
	bundles, err := env.svc.Query(context.Background(), domain.BundleFilter{SourceID: 100})
	require.NoError(t, err)
	assert.Len(t, bundles, 4)
}

func TestQuery_ConjunctiveFilters(t *testing.T) {
	env := newTestEnv(t, "query_conjunctive")
	_, late, _, _ := seedQueryFixtures(t, env)

	deviceID := snowflake.ID(42)
	periodStart := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	bundles, err := env.svc.Query(context.Background(), domain.BundleFilter{
		SourceID:               100,
		DeviceID:               &deviceID,
		CertificatePeriodStart: &periodStart,
	})
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.Equal(t, late.ID, bundles[0].ID)
}

func TestQuery_StatusFilter(t *testing.T) {
	env := newTestEnv(t, "query_status")
	_, _, _, cancelled := seedQueryFixtures(t, env)

	status := domain.StatusCancelled
	bundles, err := env.svc.Query(context.Background(), domain.BundleFilter{
		SourceID:          100,
		CertificateStatus: &status,
	})
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.Equal(t, cancelled.ID, bundles[0].ID)
}

func TestQuery_PeriodEndIsInclusiveUpperBound(t *testing.T) {
	env := newTestEnv(t, "query_period")
	early, _, otherDevice, cancelled := seedQueryFixtures(t, env)

	periodEnd := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	bundles, err := env.svc.Query(context.Background(), domain.BundleFilter{
		SourceID:             100,
		CertificatePeriodEnd: &periodEnd,
	})
	require.NoError(t, err)
	assert.Len(t, bundles, 3)

	got := map[snowflake.ID]bool{}
	for _, b := range bundles {
		got[b.ID] = true
	}
	assert.True(t, got[early.ID])
	assert.True(t, got[otherDevice.ID])
	assert.True(t, got[cancelled.ID])
}

func TestQuery_IssuanceIDsReplaceOtherFilters(t *testing.T) {
	env := newTestEnv(t, "query_issuance")
	early, _, otherDevice, _ := seedQueryFixtures(t, env)

	// A status filter that would exclude everything is ignored once
	// issuance IDs are supplied.
	status := domain.StatusExpired
	bundles, err := env.svc.Query(context.Background(), domain.BundleFilter{
		SourceID:          100,
		IssuanceIDs:       []string{early.IssuanceID, otherDevice.IssuanceID},
		CertificateStatus: &status,
	})
	require.NoError(t, err)
	assert.Len(t, bundles, 2)
}

func TestQuery_ExcludesDeleted(t *testing.T) {
	env := newTestEnv(t, "query_deleted")
	early, _, _, _ := seedQueryFixtures(t, env)

	require.NoError(t, env.read.Model(early).Update("is_deleted", true).Error)

	bundles, err := env.svc.Query(context.Background(), domain.BundleFilter{SourceID: 100})
	require.NoError(t, err)
	assert.Len(t, bundles, 3)
}

func TestQuery_EmptyResultIsNotAnError(t *testing.T) {
	env := newTestEnv(t, "query_empty")

	bundles, err := env.svc.Query(context.Background(), domain.BundleFilter{SourceID: 999})
	require.NoError(t, err)
	assert.Empty(t, bundles)
}

func TestQuery_Idempotent(t *testing.T) {
	env := newTestEnv(t, "query_idempotent")
	seedQueryFixtures(t, env)

	first, err := env.svc.Query(context.Background(), domain.BundleFilter{SourceID: 100})
	require.NoError(t, err)
	second, err := env.svc.Query(context.Background(), domain.BundleFilter{SourceID: 100})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
