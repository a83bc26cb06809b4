// Package econ implements the open-economy growth model behind the classroom
// simulation.
//
// The package is deliberately pure: Next maps a previous state, the player's
// controls, and one exogenous row to the following state, with no side
// effects and bit-identical results for identical inputs. Every computed
// quantity passes through Validate before a state is produced, so a runaway
// feedback loop (an exchange-rate or productivity spiral) fails the round
// instead of poisoning a session's history.
package econ
