// Package harness runs scripted CommunityVoice sessions against the
// headless console host and records what the user would have seen.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: upvote_flow
//	description: "Open an idea, upvote it, go back"
//	user: { id: 2001, first_name: Alex, last_name: Kim }
//	steps:
//	  - navigate: ideaDetail?id=idea-bikes
//	  - upvote: idea-bikes
//	  - sign: petition-trees
//	    reject: ALREADY_DONE
//	  - back: true
//	expect:
//	  stack: [ideas]
//	  view: ideas
//	  trace_contains: ["[Upvoted] (2)"]
//
// Each step holds exactly one action. reject names the action error code
// the step must fail with.
//
// # Deterministic Runs
//
// A session runs on a manual clock starting at a fixed instant, with
// sequential ids (id-1, id-2, ...) and the router loop driven from the
// calling goroutine. Every timer is fired in deadline order once the
// queue is idle, so the trace is identical across runs and suitable for
// golden comparison.
package harness
