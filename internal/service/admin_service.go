package service

import (
	"errors"

	"whatsledger/internal/models"
	"whatsledger/internal/repository"
	"whatsledger/pkg/whatsapp"
)

var ErrBusinessNotFound = errors.New("business not found")

type BusinessAdminStore interface {
	List(search string, page, limit int) ([]models.Business, int64, error)
	GetByID(id uint) (*models.Business, error)
	SetActive(id uint, active bool) error
}

type MessageStatsStore interface {
	CountByPhone(phone string) (incoming, outgoing int64, err error)
}

type PlatformStatsStore interface {
	GetPlatformStats() (*repository.PlatformStats, error)
	MessagesByDay(days int) ([]repository.TimeSeriesPoint, error)
}

type BusinessStats struct {
	IncomingMessages int64 `json:"incoming_messages"`
	OutgoingMessages int64 `json:"outgoing_messages"`
	TotalMessages    int64 `json:"total_messages"`
	ResponseRate     int64 `json:"response_rate"`
}

type BusinessDetail struct {
	*models.Business
	Stats BusinessStats `json:"stats"`
}

type AdminService struct {
	businesses BusinessAdminStore
	messages   MessageStatsStore
	platform   PlatformStatsStore
}

func NewAdminService(businesses BusinessAdminStore, messages MessageStatsStore, platform PlatformStatsStore) *AdminService {
	return &AdminService{businesses: businesses, messages: messages, platform: platform}
}

func (s *AdminService) ListBusinesses(search string, page, limit int) ([]models.Business, int64, error) {
	return s.businesses.List(search, page, limit)
}

// Business returns the business and the message traffic of its owner's WhatsApp number.
func (s *AdminService) Business(id uint) (*BusinessDetail, error) {
	b, err := s.businesses.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrBusinessNotFound)
	}
	in, out, err := s.messages.CountByPhone(whatsapp.Normalize(b.PhoneNumber))
	if err != nil {
		return nil, err
	}
	return &BusinessDetail{Business: b, Stats: messageStats(in, out)}, nil
}

func messageStats(in, out int64) BusinessStats {
	st := BusinessStats{IncomingMessages: in, OutgoingMessages: out, TotalMessages: in + out}
	if in > 0 {
		st.ResponseRate = (out*100 + in/2) / in
	}
	return st
}

func (s *AdminService) SetBusinessActive(id uint, active bool) (*models.Business, error) {
	if err := s.businesses.SetActive(id, active); err != nil {
		return nil, notFound(err, ErrBusinessNotFound)
	}
	return s.businesses.GetByID(id)
}

func (s *AdminService) Stats() (*repository.PlatformStats, []repository.TimeSeriesPoint, error) {
	stats, err := s.platform.GetPlatformStats()
	if err != nil {
		return nil, nil, err
	}
	series, err := s.platform.MessagesByDay(30)
	if err != nil {
		return nil, nil, err
	}
	return stats, series, nil
}
