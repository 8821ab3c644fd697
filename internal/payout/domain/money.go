package domain

import (
	itemdomain "github.com/resaleops/stockroom/internal/item/domain"
)

// All amounts are integer minor currency units; percentage arithmetic is done
// in integers with a single half-up rounding per derived amount.

// SplitProceeds divides net proceeds between store and consigner. Rounding is
// applied once, to the consigner share; the remainder goes to the store so the
// two always sum exactly to netProceeds.
func SplitProceeds(netProceeds int64, splitPercentage int) (netToStore, netToConsigner int64) {
	netToConsigner = ConsignerShare(netProceeds, splitPercentage)
	return netProceeds - netToConsigner, netToConsigner
}

// ConsignerShare is the consigner's cut of net proceeds, rounded half-up.
func ConsignerShare(netProceeds int64, splitPercentage int) int64 {
	return halfUpDiv(netProceeds*int64(splitPercentage), 100)
}

func halfUpDiv(numerator, denominator int64) int64 {
	return (numerator + denominator/2) / denominator
}

// PayoutShares splits a sold item's net proceeds per its stored split. Owned
// items have no consigner share to compute.
func PayoutShares(item itemdomain.Item) (netToStore, netToConsigner int64, err error) {
	if item.OwnershipType != itemdomain.OwnershipConsignment || item.SplitPercentage == nil {
		return 0, 0, ErrNotConsignment
	}
	var price, fee int64
	if item.SoldPrice != nil {
		price = *item.SoldPrice
	}
	if item.SoldFee != nil {
		fee = *item.SoldFee
	}
	netToStore, netToConsigner = SplitProceeds(price-fee, *item.SplitPercentage)
	return netToStore, netToConsigner, nil
}
