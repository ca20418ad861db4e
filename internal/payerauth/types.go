package payerauth

// DeviceChannel selects how the step-up challenge reaches the cardholder.
type DeviceChannel string

const (
	DeviceChannelBrowser  DeviceChannel = "browser"
	DeviceChannelAppBased DeviceChannel = "appBased"
)

// ChallengeScenario selects protocol parameters for the authentication flow.
type ChallengeScenario string

const (
	ScenarioAddCard              ChallengeScenario = "addCard"
	ScenarioPaymentTransaction   ChallengeScenario = "paymentTransaction"
	ScenarioRecurringTransaction ChallengeScenario = "recurringTransaction"
)

// EnrollmentStatus is whether a payment instrument participates in step-up
// authentication. Bypassed means the risk engine decided no challenge is
// needed for this transaction.
type EnrollmentStatus string

const (
	Enrolled              EnrollmentStatus = "enrolled"
	NotEnrolled           EnrollmentStatus = "notEnrolled"
	EnrollmentUnavailable EnrollmentStatus = "unavailable"
	Bypassed              EnrollmentStatus = "bypassed"
)

// TransactionStatus is the closed set of terminal protocol codes the backend
// may answer with. Anything outside this set is a contract break.
type TransactionStatus string

const (
	TransAuthenticated     TransactionStatus = "Y"
	TransAttempted         TransactionStatus = "A"
	TransChallengeRequired TransactionStatus = "C"
	TransNotAuthenticated  TransactionStatus = "N"
	TransUnavailable       TransactionStatus = "U"
	TransRejected          TransactionStatus = "R"
	TransFraudRejected     TransactionStatus = "FR"
)

// TransactionStatusReason is an opaque reason code (TSR01..TSR99) carried
// through for audit; only the timeout reason is interpreted.
type TransactionStatusReason string

const ReasonTransactionTimedOut TransactionStatusReason = "TSR14"

// Cancel indicators returned by the completion step.
const (
	CancelledByCardholder    = "01"
	CancelledByRequestor     = "03"
	CancelTransactionTimeout = "06"
	CancelRequestTimeout     = "07"
	CancelAbandoned          = "08"
)

// SessionContext is the protocol-side view of a payment session: the business
// and instrument context every call carries.
type SessionContext struct {
	ID                         string            `json:"id,omitempty"`
	AccountID                  string            `json:"accountId"`
	PaymentInstrumentID        string            `json:"paymentInstrumentId"`
	PaymentInstrumentAccountID string            `json:"paymentInstrumentAccountId"`
	Amount                     int64             `json:"amount"`
	Currency                   string            `json:"currency"`
	Country                    string            `json:"country"`
	Partner                    string            `json:"partner"`
	PaymentMethodFamily        string            `json:"paymentMethodFamily"`
	PaymentMethodType          string            `json:"paymentMethodType"`
	ChallengeScenario          ChallengeScenario `json:"challengeScenario"`
	DeviceChannel              DeviceChannel     `json:"deviceChannel"`
	PurchaseOrderID            string            `json:"purchaseOrderId,omitempty"`
	IsMOTO                     bool              `json:"isMOTO"`
	HasPreOrder                bool              `json:"hasPreOrder"`
	IsLegacy                   bool              `json:"isLegacy"`
	RequiresAuthentication     bool              `json:"piRequiresAuthentication"`
}

// BrowserInfo is collected from the cardholder's browser and echoed into the
// authenticate call for device fingerprinting.
type BrowserInfo struct {
	AcceptHeader        string `json:"acceptHeader,omitempty"`
	UserAgent           string `json:"userAgent,omitempty"`
	Language            string `json:"language,omitempty"`
	TimeZone            string `json:"timeZone,omitempty"`
	ScreenWidth         int    `json:"screenWidth,omitempty"`
	ScreenHeight        int    `json:"screenHeight,omitempty"`
	ColorDepth          int    `json:"colorDepth,omitempty"`
	JavaEnabled         bool   `json:"javaEnabled"`
	ChallengeWindowSize string `json:"challengeWindowSize,omitempty"`
}

// MethodData is the method-URL payload used for device fingerprinting prior
// to authentication.
type MethodData struct {
	ServerTransactionID string `json:"serverTransactionId"`
	MethodURL           string `json:"methodUrl,omitempty"`
}

type AuthenticationRequest struct {
	PaymentSession           SessionContext `json:"paymentSession"`
	BrowserInfo              *BrowserInfo   `json:"browserInfo,omitempty"`
	ServerTransactionID      string         `json:"serverTransactionId,omitempty"`
	MethodCompleted          string         `json:"methodCompletionIndicator,omitempty"`
	ChallengeNotificationURL string         `json:"challengeNotificationUrl,omitempty"`
	MessageVersion           string         `json:"messageVersion,omitempty"`
}

type AuthenticationResponse struct {
	EnrollmentStatus        EnrollmentStatus        `json:"enrollmentStatus"`
	TransactionStatus       TransactionStatus       `json:"transactionStatus,omitempty"`
	TransactionStatusReason TransactionStatusReason `json:"transactionStatusReason,omitempty"`
	ServerTransactionID     string                  `json:"serverTransactionId,omitempty"`
	AcsTransactionID        string                  `json:"acsTransactionId,omitempty"`
	AcsURL                  string                  `json:"acsUrl,omitempty"`
	AcsSignedContent        string                  `json:"acsSignedContent,omitempty"`
	MessageVersion          string                  `json:"messageVersion,omitempty"`
	CardHolderInfo          string                  `json:"cardHolderInfo,omitempty"`
}

type CompletionRequest struct {
	PaymentSession        SessionContext          `json:"paymentSession"`
	AuthenticationContext *AuthenticationResponse `json:"authenticationContext,omitempty"`
}

type CompletionResponse struct {
	TransactionStatus            TransactionStatus       `json:"transactionStatus"`
	TransactionStatusReason      TransactionStatusReason `json:"transactionStatusReason,omitempty"`
	ChallengeCancelIndicator     string                  `json:"challengeCancelIndicator,omitempty"`
	ChallengeCompletionIndicator string                  `json:"challengeCompletionIndicator,omitempty"`
}

type sessionRequest struct {
	PaymentSession SessionContext `json:"paymentSession"`
}

type sessionResponse struct {
	PaymentSessionID string `json:"paymentSessionId"`
}

type methodRequest struct {
	PaymentSession SessionContext `json:"paymentSession"`
}

type errorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}
