// Package cryptoutil verifies the integrity of published profile documents.
//
// Hashes are compared in constant time. Detached signatures are checked
// locally against a public key fetched once from AWS KMS, so a KMS outage
// after startup does not block reloads.
package cryptoutil
