// Package confloader loads configuration with koanf.
//
// Sources, lowest to highest priority:
//
//  1. Defaults already present in the target struct
//  2. YAML configuration file
//  3. Environment variables (RMCLOUD_ prefix)
//  4. Explicit values, typically command-line flags (LoadMap)
//
// Keys are flat and lowercase: RMCLOUD_DEVICE_TOKEN maps to device_token.
package confloader
