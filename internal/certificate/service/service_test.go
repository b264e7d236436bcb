package service

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	accountdomain "github.com/voltgrid/gc-registry/internal/account/domain"
	accountrepo "github.com/voltgrid/gc-registry/internal/account/repository"
	"github.com/voltgrid/gc-registry/internal/certificate/domain"
	"github.com/voltgrid/gc-registry/internal/certificate/lineage"
	certrepo "github.com/voltgrid/gc-registry/internal/certificate/repository"
	"github.com/voltgrid/gc-registry/internal/clock"
	"github.com/voltgrid/gc-registry/internal/config"
	"github.com/voltgrid/gc-registry/internal/cqrs"
	eventdomain "github.com/voltgrid/gc-registry/internal/eventlog/domain"
	eventrepo "github.com/voltgrid/gc-registry/internal/eventlog/repository"
	eventservice "github.com/voltgrid/gc-registry/internal/eventlog/service"
	"github.com/voltgrid/gc-registry/internal/migration"
	userdomain "github.com/voltgrid/gc-registry/internal/user/domain"
	userrepo "github.com/voltgrid/gc-registry/internal/user/repository"
	"github.com/voltgrid/gc-registry/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	svc    *Service
	write  *gorm.DB
	read   *gorm.DB
	events eventdomain.Service
	clock  *clock.FakeClock
	node   *snowflake.Node
}

func newTestEnv(t *testing.T, name string) *testEnv {
	t.Helper()

	write, err := gorm.Open(sqlite.Open("file:"+name+"_write?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	read, err := gorm.Open(sqlite.Open("file:"+name+"_read?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(write))
	require.NoError(t, migration.Migrate(read))

	fakeClock := clock.NewFakeClock(time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	events := eventservice.NewService(eventservice.Params{
		DB:    db.WriterDB{DB: write},
		Log:   zap.NewNop(),
		Clock: fakeClock,
		Repo:  eventrepo.Provide(),
	})
	cqrsSvc := cqrs.NewService(cqrs.Params{
		Write:  db.WriterDB{DB: write},
		Read:   db.ReaderDB{DB: read},
		Log:    zap.NewNop(),
		Events: events,
	})

	svc := NewService(Params{
		Read:     db.ReaderDB{DB: read},
		Log:      zap.NewNop(),
		Clock:    fakeClock,
		GenID:    node,
		Config:   config.Config{CertificateGranularityHours: 1, CertificateExpiryYears: 2, CapacityMargin: 1.1},
		Repo:     certrepo.Provide(),
		Accounts: accountrepo.Provide(),
		Users:    userrepo.Provide(),
		CQRS:     cqrsSvc,
	})

	return &testEnv{svc: svc, write: write, read: read, events: events, clock: fakeClock, node: node}
}

// seedBoth inserts a fixture row into both stores, bypassing the event log.
func (env *testEnv) seedBoth(t *testing.T, rows ...any) {
	t.Helper()
	for _, row := range rows {
		require.NoError(t, env.write.Create(row).Error)
		require.NoError(t, env.read.Create(row).Error)
	}
}

func (env *testEnv) seedAccount(t *testing.T, id snowflake.ID, whitelist ...int64) *accountdomain.Account {
	t.Helper()
	account := &accountdomain.Account{
		ID:             id,
		OrganisationID: 1,
		AccountName:    "account",
		Whitelist:      whitelist,
	}
	env.seedBoth(t, account)
	return account
}

func (env *testEnv) seedUser(t *testing.T, id snowflake.ID, accountIDs ...int64) *userdomain.User {
	t.Helper()
	user := &userdomain.User{
		ID:             id,
		Name:           "operator",
		Email:          "operator@example.com",
		OrganisationID: 1,
		AccountIDs:     accountIDs,
	}
	env.seedBoth(t, user)
	return user
}

func (env *testEnv) seedBundle(t *testing.T, accountID, deviceID snowflake.ID, rangeStart, quantity int64, status domain.CertificateStatus, productionStart time.Time) *domain.GranularCertificateBundle {
	t.Helper()
	bundle := &domain.GranularCertificateBundle{
		ID:                         env.node.Generate(),
		IssuanceID:                 domain.NewIssuanceID(deviceID, productionStart),
		CertificateStatus:          status,
		AccountID:                  accountID,
		BundleIDRangeStart:         rangeStart,
		BundleIDRangeEnd:           rangeStart + quantity - 1,
		BundleQuantity:             quantity,
		EnergyCarrier:              domain.CarrierElectricity,
		EnergySource:               domain.SourceWind,
		FaceValue:                  1,
		DeviceID:                   deviceID,
		MetadataID:                 1,
		ProductionStartingInterval: productionStart,
		ProductionEndingInterval:   productionStart.Add(time.Hour),
		IssuanceDatestamp:          env.clock.Now(),
		ExpiryDatestamp:            env.clock.Now().AddDate(2, 0, 0),
	}
	bundle.Hash = lineage.BundleHash(bundle, "")
	env.seedBoth(t, bundle)
	return bundle
}

func (env *testEnv) bundleByID(t *testing.T, conn *gorm.DB, id snowflake.ID) *domain.GranularCertificateBundle {
	t.Helper()
	var bundle domain.GranularCertificateBundle
	require.NoError(t, conn.First(&bundle, "id = ?", id).Error)
	return &bundle
}
