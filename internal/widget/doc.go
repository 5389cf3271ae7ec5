// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package widget implements the conversational assistant controller.
//
// The Controller owns the open/closed state, the input buffer, the loading
// flag, the suggestion state and the Conversation. It sequences
// open -> welcome turn + suggestions -> user turn -> loading -> assistant
// turn + follow-up, and owns clearing the conversation and the host page
// scroll lock while open.
//
// Asynchrony follows Bubble Tea. Submit returns a tea.Cmd that runs the
// completion call and yields a CompletionMsg; the host feeds messages back
// through Update. At most one completion call is outstanding.
//
// # States
//
//	Closed --open--> OpenEmpty (seed welcome + suggestions) --> OpenIdle
//	OpenIdle --submit--> OpenLoading --success--> OpenIdle
//	                                 --failure--> OpenError --flash--> OpenIdle
//	Any --close--> Closed (conversation retained)
//
// # Key Types
//
//   - Controller: the state machine
//   - Options: collaborators and timings
//   - Notice: a transient message for the Notifier
//   - CompletionMsg, ErrorFlashDoneMsg, HashChangeMsg: Bubble Tea messages
//
// # Usage
//
//	ctrl := widget.New(widget.Options{
//	    Completer: client,
//	    Content:   store,
//	    Notifier:  toasts,
//	    Router:    history,
//	    Opener:    navigation.SystemOpener{},
//	    Locker:    page,
//	})
//	ctrl.Open()
//	cmd := ctrl.ChooseSuggestion(ctrl.InitialSuggestions()[0])
//	// later, in the host's Update:
//	cmd = ctrl.Update(msg)
package widget
