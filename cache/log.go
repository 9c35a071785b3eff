package cache

import "go.uber.org/zap"

const (
	FieldNameToken  = "token"
	FieldNameReason = "reason"
	FieldNamePolicy = "policy"
)

// FieldToken returns a zap field with the entry token.
func FieldToken(token string) zap.Field {
	return zap.String(FieldNameToken, token)
}

// FieldReason returns a zap field with the eviction reason.
func FieldReason(reason EvictReason) zap.Field {
	return zap.Stringer(FieldNameReason, reason)
}

// FieldPolicy returns a zap field with the retention policy name.
func FieldPolicy(name string) zap.Field {
	return zap.String(FieldNamePolicy, name)
}
