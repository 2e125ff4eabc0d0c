// Package app renders CommunityVoice views and implements the user
// actions behind them.
//
// An App sits between the router and the store. The router tells it which
// route to show (Prepare, then Dispatch after the loading delay); the App
// reads the store and draws the page, header, tab and main button on the
// host. Actions such as Upvote, Sign or SubmitIdea validate input at the
// UI boundary, write through the store and then re-render or navigate.
//
// Everything runs on the router loop. Work that completes elsewhere
// (location requests, debounced search) is posted back with
// router.Post and discarded when the view that started it is gone.
package app
