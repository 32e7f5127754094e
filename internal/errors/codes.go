package errors

// Code is a stable numeric error code.
//
// Notes:
// - JSON-RPC reserves the range -32768..-32000 for system/standard errors.
// - Server-defined errors commonly use the range -32099..-32000.
type Code int

const (
	// JSON-RPC standard error codes (reference).
	ParseError     Code = -32700
	InvalidRequest Code = -32600
	MethodNotFound Code = -32601
	InvalidParams  Code = -32602
	InternalError  Code = -32603

	// Server-defined error codes for the guarded mutation pipeline.
	TokenNotFound         Code = -32001
	TokenExpired          Code = -32002
	TokenAlreadyConsumed  Code = -32003
	DryRunMismatch        Code = -32004
	VaguenessRejected     Code = -32005
	MissingCredential     Code = -32006
	ExecutionFailed       Code = -32007
	AmbiguousOutcome      Code = -32008
	ApprovalLimitExceeded Code = -32009
	AnalyticsAPIFailed    Code = -32010
)

// Name returns a stable string identifier for the code.
func (c Code) Name() string {
	switch c {
	case ParseError:
		return "ParseError"
	case InvalidRequest:
		return "InvalidRequest"
	case MethodNotFound:
		return "MethodNotFound"
	case InvalidParams:
		return "InvalidParams"
	case InternalError:
		return "InternalError"
	case TokenNotFound:
		return "TokenNotFound"
	case TokenExpired:
		return "TokenExpired"
	case TokenAlreadyConsumed:
		return "TokenAlreadyConsumed"
	case DryRunMismatch:
		return "DryRunMismatch"
	case VaguenessRejected:
		return "VaguenessRejected"
	case MissingCredential:
		return "MissingCredential"
	case ExecutionFailed:
		return "ExecutionFailed"
	case AmbiguousOutcome:
		return "AmbiguousOutcome"
	case ApprovalLimitExceeded:
		return "ApprovalLimitExceeded"
	case AnalyticsAPIFailed:
		return "AnalyticsAPIFailed"
	default:
		return "UnknownError"
	}
}
