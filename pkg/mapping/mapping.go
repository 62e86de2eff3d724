package mapping

import (
	"github.com/dashibook/chapter-monetization/pkg/api"
	"github.com/dashibook/chapter-monetization/pkg/models"
)

// ToApiWallet converts a domain Wallet model to an API Wallet model.
func ToApiWallet(wallet *models.Wallet) *api.Wallet {
	return &api.Wallet{
		UserId:      wallet.UserId,
		CoinBalance: wallet.CoinBalance,
		GoldBalance: wallet.GoldBalance,
		Revenue:     wallet.Revenue.StringFixed(2),
		Version:     wallet.Version,
		CreatedAt:   wallet.CreatedAt,
	}
}

// ToApiKanaTransaction converts a domain KanaTransaction to its API model.
func ToApiKanaTransaction(tx *models.KanaTransaction) *api.KanaTransaction {
	return &api.KanaTransaction{
		Id:        tx.Id,
		UserId:    tx.UserId,
		Currency:  string(tx.Currency),
		Type:      string(tx.Type),
		Amount:    tx.Amount,
		Reason:    tx.Reason,
		ChapterId: tx.ChapterId,
		Timestamp: tx.Timestamp,
	}
}

// ToDomainNewKanaTransaction converts an API NewKanaTransaction to a domain
// KanaTransaction for the given user. Id and Timestamp are assigned by the
// ledger service.
func ToDomainNewKanaTransaction(userID string, newTx *api.NewKanaTransaction) *models.KanaTransaction {
	return &models.KanaTransaction{
		UserId:   userID,
		Currency: models.KanaCurrency(newTx.Currency),
		Type:     models.KanaTransactionType(newTx.Type),
		Amount:   newTx.Amount,
		Reason:   newTx.Reason,
	}
}

// ToApiRevenueTransaction converts a domain RevenueTransaction to its API model.
func ToApiRevenueTransaction(tx *models.RevenueTransaction) *api.RevenueTransaction {
	return &api.RevenueTransaction{
		Id:          tx.Id,
		AuthorId:    tx.AuthorId,
		RevenueType: string(tx.RevenueType),
		Type:        string(tx.Type),
		Amount:      tx.Amount.StringFixed(2),
		Reason:      tx.Reason,
		SeriesId:    tx.SeriesId,
		Timestamp:   tx.Timestamp,
	}
}

// ToApiChapter converts a domain Chapter to its reader-facing API model.
// The published version id stays internal.
func ToApiChapter(chapter *models.Chapter) *api.Chapter {
	return &api.Chapter{
		Id:            chapter.Id,
		SeriesId:      chapter.SeriesId,
		VolumeNumber:  chapter.VolumeNumber,
		ChapterNumber: chapter.ChapterNumber,
		PublishedAt:   chapter.PublishedAt,
		KanaPrice:     chapter.KanaPrice,
		IsAdvance:     chapter.IsAdvance,
	}
}

// ToApiUnlockedChapter converts a domain UnlockedChapter to its API model.
func ToApiUnlockedChapter(unlock *models.UnlockedChapter) *api.UnlockedChapter {
	return &api.UnlockedChapter{
		UserId:     unlock.UserId,
		ChapterId:  unlock.ChapterId,
		SeriesId:   unlock.SeriesId,
		UnlockedAt: unlock.UnlockedAt,
	}
}

// ToApiTier converts a domain DashiFanTier to its API model.
func ToApiTier(tier *models.DashiFanTier) *api.DashiFanTier {
	return &api.DashiFanTier{
		Id:          tier.Id,
		SeriesId:    tier.SeriesId,
		Name:        tier.Name,
		Description: tier.Description,
		Price:       ToApiPrice(tier.Price),
		Perks:       tier.Perks,
		Active:      tier.Active,
	}
}

// ToApiPrice converts a domain Price to its API model.
func ToApiPrice(price models.Price) api.Price {
	return api.Price{
		Amount:   price.Amount.StringFixed(2),
		Currency: price.Currency,
	}
}

// ToApiSubscription converts a domain Subscription to its API model. The
// provider subscription id stays internal.
func ToApiSubscription(sub *models.Subscription) *api.Subscription {
	return &api.Subscription{
		Id:            sub.Id,
		UserId:        sub.UserId,
		TierId:        sub.TierId,
		SeriesId:      sub.SeriesId,
		Status:        string(sub.Status),
		NextBillingAt: sub.NextBillingAt,
		CreatedAt:     sub.CreatedAt,
		UpdatedAt:     sub.UpdatedAt,
	}
}

// ToApiCommissionRate converts a domain CommissionRate to its API model.
func ToApiCommissionRate(rate *models.CommissionRate) *api.CommissionRate {
	return &api.CommissionRate{
		Type:           string(rate.Type),
		RatePercentage: rate.RatePercentage,
	}
}

// ToApiExchangeRate converts a domain KanaExchangeRate to its API model.
func ToApiExchangeRate(rate *models.KanaExchangeRate) *api.KanaExchangeRate {
	return &api.KanaExchangeRate{
		CurrencyCode: rate.CurrencyCode,
		Rate:         rate.Rate.String(),
	}
}
