// Package table implements a single-player blackjack round as a small state
// machine that a learning agent can drive.
//
// # Basic Usage
//
//	t, err := table.NewTable(table.DefaultRules(), randutil.New(42), logger)
//	obs := t.Reset()
//	for {
//	    res, err := t.Step(table.Hit)
//	    if err != nil || res.Done {
//	        break
//	    }
//	    obs = res.Observation
//	}
//
// # Round Lifecycle
//
// Reset places the bet, deals two cards each to player and dealer and returns
// the first Observation. Step accepts Stand, Hit or Double. Hits keep the round
// open until the player busts; Stand and Double hand control to the dealer,
// who draws to 17 (optionally hitting soft 17) before the round is settled.
// Stepping a finished round returns ErrRoundFinished.
//
// # Deterministic Testing
//
// Build a table over a stacked shoe to control exactly which cards are dealt.
// The first two cards go to the player and the next two to the dealer:
//
//	s, _ := shoe.NewStacked(rules.ShoeConfig(), nil, 10, 7, 6, 10)
//	t, _ := table.NewTableWithShoe(rules, s, logger)
//
// Every draw, including the dealer's, goes through the shared shoe, so the
// running count seen in later observations reflects all exposed cards.
package table
