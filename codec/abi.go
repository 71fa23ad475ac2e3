package codec

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// -----------------------------------------------------------------------------
// Contract ABIs
// -----------------------------------------------------------------------------
// The JSON below is the single source of truth for the wire format. Every
// selector the dispatchers accept and every calldata blob the preparation
// service builds comes out of these two definitions, so the codec cannot drift
// from the contracts.

const _coordinatorInterfaceABI = `[
	{
		"inputs": [
			{"internalType": "string[]", "name": "cids", "type": "string[]"},
			{
				"components": [
					{"internalType": "uint8", "name": "method", "type": "uint8"},
					{"internalType": "uint8", "name": "gate", "type": "uint8"},
					{"internalType": "uint256", "name": "duration", "type": "uint256"},
					{"internalType": "uint256", "name": "startTime", "type": "uint256"},
					{"internalType": "bool", "name": "isOpen", "type": "bool"}
				],
				"internalType": "struct VoteConfig",
				"name": "config",
				"type": "tuple"
			}
		],
		"name": "openVote",
		"outputs": [{"internalType": "bytes32", "name": "sessionId", "type": "bytes32"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "bytes32", "name": "sessionId", "type": "bytes32"},
			{"internalType": "uint256", "name": "candidateIndex", "type": "uint256"}
		],
		"name": "castVote",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "bytes32", "name": "sessionId", "type": "bytes32"}
		],
		"name": "closeVote",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "bytes32", "name": "sessionId", "type": "bytes32"},
			{"internalType": "string", "name": "winnerCid", "type": "string"},
			{"internalType": "string", "name": "tokenUri", "type": "string"}
		],
		"name": "finalizeMint",
		"outputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "newAdmin", "type": "address"}
		],
		"name": "setAdmin",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

const _issuerInterfaceABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "to", "type": "address"},
			{"internalType": "string", "name": "uri", "type": "string"}
		],
		"name": "mint",
		"outputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address[]", "name": "recipients", "type": "address[]"},
			{"internalType": "string[]", "name": "uris", "type": "string[]"}
		],
		"name": "batchMint",
		"outputs": [{"internalType": "uint256[]", "name": "tokenIds", "type": "uint256[]"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "newCaller", "type": "address"}
		],
		"name": "setAuthorizedCaller",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "newAdmin", "type": "address"}
		],
		"name": "setAdmin",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

var (
	_coordinatorABI abi.ABI
	_issuerABI      abi.ABI

	_openVoteMethod      abi.Method
	_castVoteMethod      abi.Method
	_closeVoteMethod     abi.Method
	_finalizeMintMethod  abi.Method
	_coordSetAdminMethod abi.Method

	_mintMethod           abi.Method
	_batchMintMethod      abi.Method
	_setAuthCallerMethod  abi.Method
	_issuerSetAdminMethod abi.Method
)

func init() {
	_coordinatorABI = mustLoadABI(_coordinatorInterfaceABI)
	_issuerABI = mustLoadABI(_issuerInterfaceABI)

	_openVoteMethod = mustLoadMethod(_coordinatorABI, "openVote")
	_castVoteMethod = mustLoadMethod(_coordinatorABI, "castVote")
	_closeVoteMethod = mustLoadMethod(_coordinatorABI, "closeVote")
	_finalizeMintMethod = mustLoadMethod(_coordinatorABI, "finalizeMint")
	_coordSetAdminMethod = mustLoadMethod(_coordinatorABI, "setAdmin")

	_mintMethod = mustLoadMethod(_issuerABI, "mint")
	_batchMintMethod = mustLoadMethod(_issuerABI, "batchMint")
	_setAuthCallerMethod = mustLoadMethod(_issuerABI, "setAuthorizedCaller")
	_issuerSetAdminMethod = mustLoadMethod(_issuerABI, "setAdmin")
}

func mustLoadABI(abiStr string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiStr))
	if err != nil {
		panic(err)
	}
	return parsed
}

func mustLoadMethod(parsed abi.ABI, method string) abi.Method {
	m, ok := parsed.Methods[method]
	if !ok {
		panic("fail to load the method " + method)
	}
	return m
}
