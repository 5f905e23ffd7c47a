// Package ident generates identifiers for devices and documents.
//
// The document-storage service keys devices and documents by canonical
// version 4 UUIDs (36 characters, lowercase hex with hyphens):
//
//	xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx
//
// Identifiers are drawn from crypto/rand via github.com/google/uuid, so two
// calls never return the same value in practice.
package ident
