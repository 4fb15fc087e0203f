package service

import (
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAddressServiceTest(t *testing.T) AddressService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewAddressService(repository.NewAddressRepository(testDB))
}

func homeAddress() AddressInput {
	return AddressInput{Label: "Home", Address: "1 Main St", City: "Seoul", PostalCode: "04524", Country: "KR"}
}

func TestAddressService_FirstAddressIsDefault(t *testing.T) {
	svc := setupAddressServiceTest(t)

	home, err := svc.CreateAddress("user-1", homeAddress())
	require.NoError(t, err)
	assert.True(t, home.IsDefault)

	office := homeAddress()
	office.Label = "Office"
	office.Address = "9 Tower Rd"
	work, err := svc.CreateAddress("user-1", office)
	require.NoError(t, err)
	assert.False(t, work.IsDefault)

	_, err = svc.SetDefaultAddress("user-1", work.ID)
	require.NoError(t, err)

	addresses, err := svc.ListAddresses("user-1")
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, work.ID, addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
	assert.False(t, addresses[1].IsDefault)
}

func TestAddressService_DeleteDefaultPromotesNext(t *testing.T) {
	svc := setupAddressServiceTest(t)

	home, err := svc.CreateAddress("user-1", homeAddress())
	require.NoError(t, err)
	other, err := svc.CreateAddress("user-1", homeAddress())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAddress("user-1", home.ID))

	addresses, err := svc.ListAddresses("user-1")
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, other.ID, addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
}

func TestAddressService_Validation(t *testing.T) {
	svc := setupAddressServiceTest(t)

	incomplete := homeAddress()
	incomplete.PostalCode = " "
	_, err := svc.CreateAddress("user-1", incomplete)
	assert.ErrorIs(t, err, ErrIncompleteAddress)

	_, err = svc.ShippingAddressFor("user-1", "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidAddressID)
}

func TestAddressService_OtherUsersAddressesAreHidden(t *testing.T) {
	svc := setupAddressServiceTest(t)

	home, err := svc.CreateAddress("user-1", homeAddress())
	require.NoError(t, err)

	_, err = svc.ShippingAddressFor("user-2", home.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)

	_, err = svc.UpdateAddress("user-2", home.ID, homeAddress())
	assert.ErrorIs(t, err, ErrAddressNotFound)

	assert.ErrorIs(t, svc.DeleteAddress("user-2", home.ID), ErrAddressNotFound)

	snapshot, err := svc.ShippingAddressFor("user-1", home.ID)
	require.NoError(t, err)
	assert.Equal(t, "04524", snapshot.PostalCode)
	assert.True(t, snapshot.Complete())
}
