package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/voltgrid/gc-registry/internal/device/domain"
	"github.com/voltgrid/gc-registry/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const wattsPerMegawatt = 1e6

type Params struct {
	fx.In

	Read db.ReaderDB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	read *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func NewService(p Params) *Service {
	return &Service{
		read: p.Read.DB,
		log:  p.Log.Named("device.service"),
		repo: p.Repo,
	}
}

// CapacityWh returns the maximum Watt-hours the device can produce over the
// given number of hours, from its nameplate capacity in Watts.
func (s *Service) CapacityWh(ctx context.Context, deviceID snowflake.ID, hours float64) (float64, error) {
	capacityW, err := s.repo.CapacityByID(ctx, s.read, deviceID)
	if err != nil {
		return 0, err
	}
	return MWCapacityToWhMax(capacityW/wattsPerMegawatt, hours), nil
}

// MWCapacityToWhMax takes the device capacity in MW and calculates the
// maximum Watt-hours the device can produce in the given number of hours.
func MWCapacityToWhMax(capacityMW, hours float64) float64 {
	return capacityMW * wattsPerMegawatt * hours
}
