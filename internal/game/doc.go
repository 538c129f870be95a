// Package game runs single-player blackjack rounds against a dealer.
//
// The Engine owns the shoe, the Hi-Lo running count, the bankroll and the
// hands in play. Commands (PlaceBet, Hit, Stand, DoubleDown, Split, Proceed)
// run synchronously and publish events describing what happened; the
// presentation layer reads a Snapshot after each command and may subscribe a
// Narrator to receive the round as sentences.
//
// # Basic Usage
//
//	e, err := game.New(game.WithDecks(2), game.WithSeed(42))
//	if err != nil {
//	    return err
//	}
//	if err := e.PlaceBet(10); err != nil {
//	    return err
//	}
//	for e.State() == game.Playing {
//	    _ = e.Execute(e.RecommendedAction())
//	}
//	result, _ := e.LastResult()
//	fmt.Println(result.Summary())
//
// # Pacing
//
// With WithPauseDealer(true) the dealer turn stops before each step and waits
// for Proceed, so a UI can show the reveal and every draw separately. The
// engine reports itself Busy while paused.
//
// # Deterministic Testing
//
// WithSeed fixes the shuffle. WithShoe with deck.NewStackedShoe deals an exact
// card sequence: player, dealer, player, dealer hole card, then every later draw
// in order.
package game
