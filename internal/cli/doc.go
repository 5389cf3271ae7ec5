// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siteassist command line.
//
// Commands:
//
//	siteassist              Browse the site with the assistant (full screen)
//	siteassist chat         Talk to the assistant line by line
//	siteassist ask "..."    Ask one question and print the reply
//	siteassist serve        Run the stub completion service
//	siteassist suggest      Print a sample of starter suggestions
//	siteassist config ...   Show, locate or create the config file
//	siteassist version      Print version information
//
// When no completion endpoint is configured the hosts answer from the
// content catalog in process, the same way the stub service does.
package cli
