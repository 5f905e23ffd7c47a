// Package command provides the rmcloud-cli command tree.
//
// Commands are built with urfave/cli/v2. The root Before hook loads the
// configuration and builds one rmcloud.Client per invocation; document
// commands open a session through the connection package.
package command
