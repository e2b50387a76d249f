// Package ui contains the Bubble Tea program that renders the tab switcher
// overlay. The Model type focuses on message orchestration while dedicated
// helpers own input, rendering, and the coordinator connection.
//
// Message flow:
//   - Init asks the coordinator for tab data over a router.Transport. The
//     reply opens a switcher.Controller and mounts it on an overlay.Host,
//     which disposes any overlay that was still showing.
//   - Update routes each tea.Msg through a typed handler registry. Key
//     presses and releases (input.go) drive the controller; pushes from the
//     coordinator (push.go) advance or commit the selection.
//   - When the controller yields an activation effect, actions.go sends it
//     through the command bus and quits once the coordinator answers.
//
// Rendering (view.go, preview.go) lists the candidates most recent first
// and, on wide terminals, draws the selected tab's screenshot beside the
// list using half-block cells.
package ui
