// Package service implements the bundle lifecycle engine: issuance
// validation, bundle splitting, the action dispatcher, and the query surface.
package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/voltgrid/gc-registry/internal/account/domain"
	"github.com/voltgrid/gc-registry/internal/certificate/domain"
	"github.com/voltgrid/gc-registry/internal/clock"
	"github.com/voltgrid/gc-registry/internal/config"
	"github.com/voltgrid/gc-registry/internal/cqrs"
	"github.com/voltgrid/gc-registry/internal/observability/metrics"
	userdomain "github.com/voltgrid/gc-registry/internal/user/domain"
	"github.com/voltgrid/gc-registry/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Read     db.ReaderDB
	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	Config   config.Config
	Repo     domain.Repository
	Accounts accountdomain.Repository
	Users    userdomain.Repository
	CQRS     *cqrs.Service
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	read     *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	cfg      config.Config
	repo     domain.Repository
	accounts accountdomain.Repository
	users    userdomain.Repository
	cqrs     *cqrs.Service
	metrics  *metrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		read:     p.Read.DB,
		log:      p.Log.Named("certificate.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		cfg:      p.Config,
		repo:     p.Repo,
		accounts: p.Accounts,
		users:    p.Users,
		cqrs:     p.CQRS,
		metrics:  p.Metrics,
	}
}

// Query returns the bundles matching the filter from the read store. An empty
// result is not an error.
func (s *Service) Query(ctx context.Context, filter domain.BundleFilter) ([]*domain.GranularCertificateBundle, error) {
	return s.repo.Search(ctx, s.read, filter)
}

// BundlesByIDs returns the identified bundles from the read store.
func (s *Service) BundlesByIDs(ctx context.Context, ids []int64) ([]*domain.GranularCertificateBundle, error) {
	return s.repo.FindByIDs(ctx, s.read, ids)
}
