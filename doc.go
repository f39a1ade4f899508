// Package roombots is the control software for self-reconfiguring modular
// robots that evolve their gaits and their offspring on board.
//
// Each module runs a lifecycle controller (package lifecycle) that moves an
// organism through infancy, where a locomotion algorithm is tuned, into
// mature life, where the organism spreads its genome and picks mates, and
// finally death. Modules talk over numbered channels using the KEY=VALUE
// messages in package protocol.
//
// Genomes are either NEAT-evolved CPPNs or plain matrices (package genome,
// built on package neat). Package organism keeps the mate registry and the
// parent selection policies.
//
// Package sim runs whole organisms in a simulated arena, and cmd/roombot is
// the command line front end:
//
//	roombot simulate --world arena.yaml --sink csv --out runs
//	roombot genome new --kind cppn | roombot genome mutate -
//	roombot message new GENOME_SPREAD_MESSAGE ID=7 FITNESS=3.5
package roombots
