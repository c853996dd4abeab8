package model

// CredentialStatus represents the lifecycle state of a customer credential.
type CredentialStatus string

const (
	CredentialStatusActive  CredentialStatus = "active"
	CredentialStatusRevoked CredentialStatus = "revoked"
)

// Token prefixes keep access and recovery tokens in distinct namespaces so
// one can never be mistaken for the other.
const (
	AccessTokenPrefix   = "cust_"
	RecoveryTokenPrefix = "recover_"
)
