// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sessions keeps per-browser state.

Store persists login state (tokens, the pending OTP login, the signed-in
profile) in the session table so a restart does not sign users out.

Registry holds one in-memory Workspace per session: the farm draft, the
command buffer for the browser map, navigation state and the in-flight
action guard. Workspaces are dropped on logout and swept when idle.
*/
package sessions
