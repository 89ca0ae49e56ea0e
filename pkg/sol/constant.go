package sol

import "github.com/gagliardetto/solana-go"

var WSOL = solana.WrappedSol

// getMultipleAccounts accepts at most 100 keys per call
const MaxAccountsPerRequest = 100
