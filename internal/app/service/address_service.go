package service

import (
	"errors"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidAddressID = apperrors.Validation("Invalid address ID")
	ErrAddressNotFound  = apperrors.NotFound("Address not found")
)

// AddressInput is the editable part of a saved address
type AddressInput struct {
	Label      string
	Address    string
	City       string
	PostalCode string
	Country    string
	IsDefault  bool
}

func (in AddressInput) apply(a *model.Address) error {
	a.Label = strings.TrimSpace(in.Label)
	a.Address = strings.TrimSpace(in.Address)
	a.City = strings.TrimSpace(in.City)
	a.PostalCode = strings.TrimSpace(in.PostalCode)
	a.Country = strings.TrimSpace(in.Country)
	if !a.ShippingAddress().Complete() {
		return ErrIncompleteAddress
	}
	return nil
}

type AddressService interface {
	ListAddresses(userID string) ([]model.Address, error)
	CreateAddress(userID string, in AddressInput) (*model.Address, error)
	UpdateAddress(userID, addressID string, in AddressInput) (*model.Address, error)
	DeleteAddress(userID, addressID string) error
	SetDefaultAddress(userID, addressID string) (*model.Address, error)
	// ShippingAddressFor returns the snapshot checkout copies from a saved address
	ShippingAddressFor(userID, addressID string) (model.ShippingAddress, error)
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func (s *addressService) ListAddresses(userID string) ([]model.Address, error) {
	addresses, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to load addresses")
	}
	return addresses, nil
}

// CreateAddress saves a new address. The first address a user saves becomes
// the default.
func (s *addressService) CreateAddress(userID string, in AddressInput) (*model.Address, error) {
	address := &model.Address{UserID: userID}
	if err := in.apply(address); err != nil {
		return nil, err
	}

	existing, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to create address")
	}
	makeDefault := in.IsDefault || len(existing) == 0

	if err := s.addressRepo.Create(address); err != nil {
		return nil, apperrors.Upstream(err, "Failed to create address")
	}
	if makeDefault {
		if err := s.addressRepo.SetDefault(userID, address.ID); err != nil {
			return nil, apperrors.Upstream(err, "Failed to set default address")
		}
		address.IsDefault = true
	}

	logger.Info("Address created", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    userID,
		"is_default": address.IsDefault,
	})
	return address, nil
}

// loadOwned hides other users' addresses behind NotFound
func (s *addressService) loadOwned(userID, addressID string) (*model.Address, error) {
	if !validID(addressID) {
		return nil, ErrInvalidAddressID
	}

	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, apperrors.Upstream(err, "Failed to load address")
	}
	if address.UserID != userID {
		logger.Warn("Address accessed by non-owner", map[string]interface{}{
			"address_id": addressID,
			"user_id":    userID,
		})
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func (s *addressService) UpdateAddress(userID, addressID string, in AddressInput) (*model.Address, error) {
	address, err := s.loadOwned(userID, addressID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(address); err != nil {
		return nil, err
	}

	if err := s.addressRepo.Update(address); err != nil {
		return nil, apperrors.Upstream(err, "Failed to update address")
	}
	if in.IsDefault && !address.IsDefault {
		if err := s.addressRepo.SetDefault(userID, address.ID); err != nil {
			return nil, apperrors.Upstream(err, "Failed to set default address")
		}
		address.IsDefault = true
	}
	return address, nil
}

// DeleteAddress removes an address. Deleting the default promotes the next
// address in list order.
func (s *addressService) DeleteAddress(userID, addressID string) error {
	address, err := s.loadOwned(userID, addressID)
	if err != nil {
		return err
	}

	if err := s.addressRepo.Delete(address.ID); err != nil {
		return apperrors.Upstream(err, "Failed to delete address")
	}

	if address.IsDefault {
		remaining, err := s.addressRepo.FindByUserID(userID)
		if err != nil {
			return apperrors.Upstream(err, "Failed to load addresses")
		}
		if len(remaining) > 0 {
			if err := s.addressRepo.SetDefault(userID, remaining[0].ID); err != nil {
				return apperrors.Upstream(err, "Failed to set default address")
			}
		}
	}

	logger.Info("Address deleted", map[string]interface{}{
		"address_id": addressID,
		"user_id":    userID,
	})
	return nil
}

func (s *addressService) SetDefaultAddress(userID, addressID string) (*model.Address, error) {
	address, err := s.loadOwned(userID, addressID)
	if err != nil {
		return nil, err
	}
	if err := s.addressRepo.SetDefault(userID, address.ID); err != nil {
		return nil, apperrors.Upstream(err, "Failed to set default address")
	}
	address.IsDefault = true
	return address, nil
}

func (s *addressService) ShippingAddressFor(userID, addressID string) (model.ShippingAddress, error) {
	address, err := s.loadOwned(userID, addressID)
	if err != nil {
		return model.ShippingAddress{}, err
	}
	return address.ShippingAddress(), nil
}
