package vnpay

// CodeSuccess is the gateway's only success response code. Every other
// code is a distinct business failure, not a security event.
const CodeSuccess = "00"

// responseCodes maps the gateway's documented outcome codes to
// human-readable descriptions. The table is part of the public
// contract; unknown codes still get a usable description.
var responseCodes = map[string]string{
	"00": "Transaction successful",
	"07": "Amount deducted, transaction suspected of fraud",
	"09": "Card or account not registered for internet banking",
	"10": "Card or account authentication failed more than 3 times",
	"11": "Payment deadline expired",
	"12": "Card or account is locked",
	"13": "Incorrect one-time password",
	"24": "Transaction cancelled by customer",
	"51": "Insufficient funds",
	"65": "Daily transaction limit exceeded",
	"75": "Issuing bank under maintenance",
	"79": "Payment password entered incorrectly too many times",
	"99": "Other error",
}

// CodeDescription returns the description for a gateway response code.
func CodeDescription(code string) string {
	if d, ok := responseCodes[code]; ok {
		return d
	}
	return "Unrecognized gateway response code"
}

// IsSuccess reports whether a callback's response code indicates a
// completed payment.
func IsSuccess(code string) bool { return code == CodeSuccess }
