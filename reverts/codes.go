// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

// authorization
var (
	ErrCalledByNotCreator    = New(KindAuthorization, "ERROR_CALLED_BY_NOT_CREATOR")
	ErrCalledByNotPlaManager = New(KindAuthorization, "ERROR_CALLED_BY_NOT_PLA_MANAGER")
	ErrCalledByNotValOwner   = New(KindAuthorization, "ERROR_CALLED_BY_NOT_VAL_OWNER")
	ErrCalledByNotValManager = New(KindAuthorization, "ERROR_CALLED_BY_NOT_VAL_MANAGER")
	ErrCalledByNotDelManager = New(KindAuthorization, "ERROR_CALLED_BY_NOT_DEL_MANAGER")
	ErrUserNotRegistered     = New(KindAuthorization, "ERROR_USER_NOT_REGISTERED")
	ErrUserRole              = New(KindAuthorization, "ERROR_USER_ROLE")
)

// state
var (
	ErrState             = New(KindState, "ERROR_STATE")
	ErrUserExists        = New(KindState, "ERROR_USER_ALREADY_EXISTS")
	ErrUserHasApps       = New(KindState, "ERROR_USER_HAS_APPS")
	ErrAdHasDelegators   = New(KindState, "ERROR_AD_HAS_DELEGATORS")
	ErrPartnerExists     = New(KindState, "ERROR_PARTNER_ALREADY_EXISTS")
	ErrPartnerNotFound   = New(KindState, "ERROR_PARTNER_DOES_NOT_EXIST")
	ErrAssetNotAccepted  = New(KindState, "ERROR_ASSET_NOT_ACCEPTED")
	ErrNativeAsset       = New(KindState, "ERROR_NATIVE_ASSET")
	ErrTemplateEmpty     = New(KindState, "ERROR_TEMPLATE_EMPTY")
	ErrTemplateMismatch  = New(KindState, "ERROR_TEMPLATE_MISMATCH")
	ErrNotLive           = New(KindState, "ERROR_AD_NOT_READY")
	ErrBeneficiaryOK     = New(KindState, "ERROR_BENEFICIARY_IS_ELIGIBLE")
	ErrNotSuspended      = New(KindState, "ERROR_BENEFICIARY_NOT_SUSPENDED")
	ErrNotIncentivized   = New(KindState, "ERROR_BENEFICIARY_NOT_INCENTIVE_ELIGIBLE")
	ErrKeysNotRegistered = New(KindState, "ERROR_KEYS_NOT_REGISTERED")
	ErrCanPay            = New(KindState, "ERROR_ESCROW_CAN_PAY")
	ErrAssetInUse        = New(KindState, "ERROR_ASSET_IN_USE")
	ErrUnknownMethod     = New(KindState, "ERROR_UNKNOWN_METHOD")
	ErrBadArgs           = New(KindState, "ERROR_BAD_ARGUMENTS")
)

// timing
var (
	ErrTooEarly       = New(KindTiming, "ERROR_TOO_EARLY")
	ErrTooLate        = New(KindTiming, "ERROR_TOO_LATE")
	ErrAlreadyClaimed = New(KindTiming, "ERROR_ALREADY_CLAIMED")
	ErrAlreadyExpired = New(KindTiming, "ERROR_ALREADY_EXPIRED")
	ErrNotExpired     = New(KindTiming, "ERROR_NOT_YET_EXPIRED")
	ErrBreachCooldown = New(KindTiming, "ERROR_BREACH_COOLDOWN")
	ErrReportTooSoon  = New(KindTiming, "ERROR_REPORT_TOO_SOON")
)

// reference
var (
	ErrSlotMismatch     = New(KindReference, "ERROR_SLOT_MISMATCH")
	ErrAppNotFound      = New(KindReference, "ERROR_APP_DOES_NOT_EXIST")
	ErrAppNotAtIndex    = New(KindReference, "ERROR_APP_NOT_AT_INDEX")
	ErrTermsHash        = New(KindReference, "ERROR_TERMS_MISMATCH")
	ErrKeysBeneficiary  = New(KindReference, "ERROR_KEYS_BENEFICIARY_MISMATCH")
	ErrKeysRoundRange   = New(KindReference, "ERROR_KEYS_ROUND_RANGE_MISMATCH")
	ErrKeysNotSubmitted = New(KindReference, "ERROR_KEYS_MISMATCH")
	ErrSlotOutOfRange   = New(KindReference, "ERROR_SLOT_OUT_OF_RANGE")
)

// payment
var (
	ErrAmount         = New(KindPayment, "ERROR_AMOUNT")
	ErrReceiver       = New(KindPayment, "ERROR_RECEIVER")
	ErrAssetID        = New(KindPayment, "ERROR_ASSET_ID")
	ErrPaymentMissing = New(KindPayment, "ERROR_PAYMENT_MISSING")
	ErrSender         = New(KindPayment, "ERROR_SENDER")
)

// resource
var (
	ErrInsufficientBalance = New(KindResource, "ERROR_INSUFFICIENT_BALANCE")
	ErrFrozen              = New(KindResource, "ERROR_FROZEN")
	ErrNotOptedIn          = New(KindResource, "ERROR_NOT_OPTED_IN")
	ErrMinBalance          = New(KindResource, "ERROR_MIN_BALANCE")
	ErrNoFreeSlot          = New(KindResource, "ERROR_NO_FREE_SLOT")
	ErrSlotTaken           = New(KindResource, "ERROR_SLOT_TAKEN")
	ErrRecordExists        = New(KindResource, "ERROR_RECORD_EXISTS")
	ErrAccountClosed       = New(KindResource, "ERROR_ACCOUNT_CLOSED")
	ErrTemplateTooLarge    = New(KindResource, "ERROR_TEMPLATE_TOO_LARGE")
)

// terms
var (
	ErrTermsCommission   = New(KindTerms, "ERROR_TERMS_COMMISSION")
	ErrTermsPrice        = New(KindTerms, "ERROR_TERMS_PRICE")
	ErrTermsDuration     = New(KindTerms, "ERROR_TERMS_DURATION")
	ErrTermsTiming       = New(KindTerms, "ERROR_TERMS_TIMING")
	ErrTermsStake        = New(KindTerms, "ERROR_TERMS_STAKE")
	ErrTermsWarnings     = New(KindTerms, "ERROR_TERMS_WARNINGS")
	ErrTermsGating       = New(KindTerms, "ERROR_TERMS_GATING")
	ErrTermsCapacity     = New(KindTerms, "ERROR_TERMS_CAPACITY")
	ErrBeneficiaryLimits = New(KindTerms, "ERROR_BENEFICIARY_NOT_ELIGIBLE")
)

// Wrap attaches detail to a sentinel while keeping its code and kind.
func Wrap(sentinel *ErrRevert, format string, args ...any) *ErrRevert {
	return Newf(sentinel.kind, sentinel.code, format, args...)
}
