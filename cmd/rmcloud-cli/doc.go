// Package main provides the entry point for rmcloud-cli.
//
// rmcloud-cli pairs a machine with the reMarkable cloud and manages the
// documents stored there:
//
//	rmcloud-cli register
//	rmcloud-cli docs list
//	rmcloud-cli docs upload --parent FOLDER_ID notes.zip
//	rmcloud-cli -o json docs rm --version 3 DOC_ID
//
// The device credential is kept in ~/.rmcloud/cli.yaml.
package main
