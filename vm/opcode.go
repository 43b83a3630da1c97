package vm

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode represents a single bytecode instruction.
type Opcode byte

// Constants
const (
	OpPushInt8   Opcode = 0x00 // push 8-bit signed integer
	OpPushInt16  Opcode = 0x01 // push 16-bit signed integer
	OpPushInt32  Opcode = 0x02 // push 32-bit signed integer
	OpPushInt64  Opcode = 0x03 // push 64-bit signed integer
	OpPushInt128 Opcode = 0x04 // push 128-bit signed integer
	OpPushInt256 Opcode = 0x05 // push 256-bit signed integer
	OpPushTrue   Opcode = 0x08 // push boolean true
	OpPushFalse  Opcode = 0x09 // push boolean false
	OpPushA      Opcode = 0x0A // push a code pointer (4-byte relative offset)
	OpPushNull   Opcode = 0x0B // push null
	OpPushData1  Opcode = 0x0C // push data with 1-byte length prefix
	OpPushData2  Opcode = 0x0D // push data with 2-byte length prefix
	OpPushData4  Opcode = 0x0E // push data with 4-byte length prefix
	OpPushM1     Opcode = 0x0F // push -1
	OpPush0      Opcode = 0x10 // push 0
	OpPush1      Opcode = 0x11
	OpPush2      Opcode = 0x12
	OpPush3      Opcode = 0x13
	OpPush4      Opcode = 0x14
	OpPush5      Opcode = 0x15
	OpPush6      Opcode = 0x16
	OpPush7      Opcode = 0x17
	OpPush8      Opcode = 0x18
	OpPush9      Opcode = 0x19
	OpPush10     Opcode = 0x1A
	OpPush11     Opcode = 0x1B
	OpPush12     Opcode = 0x1C
	OpPush13     Opcode = 0x1D
	OpPush14     Opcode = 0x1E
	OpPush15     Opcode = 0x1F
	OpPush16     Opcode = 0x20 // push 16
)

// Flow control
const (
	OpNOP        Opcode = 0x21 // no operation
	OpJMP        Opcode = 0x22 // unconditional jump (8-bit offset)
	OpJMPL       Opcode = 0x23 // unconditional jump (32-bit offset)
	OpJMPIF      Opcode = 0x24 // jump if true (8-bit offset)
	OpJMPIFL     Opcode = 0x25 // jump if true (32-bit offset)
	OpJMPIFNOT   Opcode = 0x26 // jump if false (8-bit offset)
	OpJMPIFNOTL  Opcode = 0x27 // jump if false (32-bit offset)
	OpJMPEQ      Opcode = 0x28 // jump if equal (8-bit offset)
	OpJMPEQL     Opcode = 0x29 // jump if equal (32-bit offset)
	OpJMPNE      Opcode = 0x2A // jump if not equal (8-bit offset)
	OpJMPNEL     Opcode = 0x2B // jump if not equal (32-bit offset)
	OpJMPGT      Opcode = 0x2C // jump if greater (8-bit offset)
	OpJMPGTL     Opcode = 0x2D // jump if greater (32-bit offset)
	OpJMPGE      Opcode = 0x2E // jump if greater or equal (8-bit offset)
	OpJMPGEL     Opcode = 0x2F // jump if greater or equal (32-bit offset)
	OpJMPLT      Opcode = 0x30 // jump if less (8-bit offset)
	OpJMPLTL     Opcode = 0x31 // jump if less (32-bit offset)
	OpJMPLE      Opcode = 0x32 // jump if less or equal (8-bit offset)
	OpJMPLEL     Opcode = 0x33 // jump if less or equal (32-bit offset)
	OpCALL       Opcode = 0x34 // call (8-bit offset)
	OpCALLL      Opcode = 0x35 // call (32-bit offset)
	OpCALLA      Opcode = 0x36 // call through a pointer on the stack
	OpCALLT      Opcode = 0x37 // call a host-resolved token (16-bit index)
	OpABORT      Opcode = 0x38 // abort execution, uncatchable
	OpASSERT     Opcode = 0x39 // fault if top of stack is false, uncatchable
	OpTHROW      Opcode = 0x3A // throw the top of stack as an exception
	OpTRY        Opcode = 0x3B // begin try block (two 8-bit offsets)
	OpTRYL       Opcode = 0x3C // begin try block (two 32-bit offsets)
	OpENDTRY     Opcode = 0x3D // end try block (8-bit resume offset)
	OpENDTRYL    Opcode = 0x3E // end try block (32-bit resume offset)
	OpENDFINALLY Opcode = 0x3F // end finally block
	OpRET        Opcode = 0x40 // return from the current context
	OpSYSCALL    Opcode = 0x41 // invoke an interop service (32-bit name hash)
)

// Stack manipulation
const (
	OpDEPTH    Opcode = 0x43 // push the number of stack items
	OpDROP     Opcode = 0x45 // discard top of stack
	OpNIP      Opcode = 0x46 // discard second item
	OpXDROP    Opcode = 0x48 // discard item at popped index n
	OpCLEAR    Opcode = 0x49 // discard all stack items
	OpDUP      Opcode = 0x4A // duplicate top of stack
	OpOVER     Opcode = 0x4B // copy second item to top
	OpPICK     Opcode = 0x4D // copy item at popped index n to top
	OpTUCK     Opcode = 0x4E // copy top item below the second item
	OpSWAP     Opcode = 0x50 // swap top two items
	OpROT      Opcode = 0x51 // rotate top three items
	OpROLL     Opcode = 0x52 // move item at popped index n to top
	OpREVERSE3 Opcode = 0x53 // reverse top three items
	OpREVERSE4 Opcode = 0x54 // reverse top four items
	OpREVERSEN Opcode = 0x55 // reverse top n items, n popped
)

// Slots
const (
	OpINITSSLOT Opcode = 0x56 // allocate static field slot (8-bit count)
	OpINITSLOT  Opcode = 0x57 // allocate locals/arguments (two 8-bit counts)
	OpLDSFLD0   Opcode = 0x58
	OpLDSFLD1   Opcode = 0x59
	OpLDSFLD2   Opcode = 0x5A
	OpLDSFLD3   Opcode = 0x5B
	OpLDSFLD4   Opcode = 0x5C
	OpLDSFLD5   Opcode = 0x5D
	OpLDSFLD6   Opcode = 0x5E
	OpLDSFLD    Opcode = 0x5F // load static field (8-bit index)
	OpSTSFLD0   Opcode = 0x60
	OpSTSFLD1   Opcode = 0x61
	OpSTSFLD2   Opcode = 0x62
	OpSTSFLD3   Opcode = 0x63
	OpSTSFLD4   Opcode = 0x64
	OpSTSFLD5   Opcode = 0x65
	OpSTSFLD6   Opcode = 0x66
	OpSTSFLD    Opcode = 0x67 // store static field (8-bit index)
	OpLDLOC0    Opcode = 0x68
	OpLDLOC1    Opcode = 0x69
	OpLDLOC2    Opcode = 0x6A
	OpLDLOC3    Opcode = 0x6B
	OpLDLOC4    Opcode = 0x6C
	OpLDLOC5    Opcode = 0x6D
	OpLDLOC6    Opcode = 0x6E
	OpLDLOC     Opcode = 0x6F // load local (8-bit index)
	OpSTLOC0    Opcode = 0x70
	OpSTLOC1    Opcode = 0x71
	OpSTLOC2    Opcode = 0x72
	OpSTLOC3    Opcode = 0x73
	OpSTLOC4    Opcode = 0x74
	OpSTLOC5    Opcode = 0x75
	OpSTLOC6    Opcode = 0x76
	OpSTLOC     Opcode = 0x77 // store local (8-bit index)
	OpLDARG0    Opcode = 0x78
	OpLDARG1    Opcode = 0x79
	OpLDARG2    Opcode = 0x7A
	OpLDARG3    Opcode = 0x7B
	OpLDARG4    Opcode = 0x7C
	OpLDARG5    Opcode = 0x7D
	OpLDARG6    Opcode = 0x7E
	OpLDARG     Opcode = 0x7F // load argument (8-bit index)
	OpSTARG0    Opcode = 0x80
	OpSTARG1    Opcode = 0x81
	OpSTARG2    Opcode = 0x82
	OpSTARG3    Opcode = 0x83
	OpSTARG4    Opcode = 0x84
	OpSTARG5    Opcode = 0x85
	OpSTARG6    Opcode = 0x86
	OpSTARG     Opcode = 0x87 // store argument (8-bit index)
)

// Splice
const (
	OpNEWBUFFER Opcode = 0x88 // create a buffer of popped size
	OpMEMCPY    Opcode = 0x89 // copy a region between buffers
	OpCAT       Opcode = 0x8B // concatenate two byte strings
	OpSUBSTR    Opcode = 0x8C // extract a substring
	OpLEFT      Opcode = 0x8D // take the leftmost n bytes
	OpRIGHT     Opcode = 0x8E // take the rightmost n bytes
)

// Bitwise and equality
const (
	OpINVERT   Opcode = 0x90 // bitwise NOT
	OpAND      Opcode = 0x91 // bitwise AND
	OpOR       Opcode = 0x92 // bitwise OR
	OpXOR      Opcode = 0x93 // bitwise XOR
	OpEQUAL    Opcode = 0x97 // item equality
	OpNOTEQUAL Opcode = 0x98 // item inequality
)

// Numeric
const (
	OpSIGN        Opcode = 0x99 // sign of an integer
	OpABS         Opcode = 0x9A // absolute value
	OpNEGATE      Opcode = 0x9B // arithmetic negation
	OpINC         Opcode = 0x9C // increment by one
	OpDEC         Opcode = 0x9D // decrement by one
	OpADD         Opcode = 0x9E
	OpSUB         Opcode = 0x9F
	OpMUL         Opcode = 0xA0
	OpDIV         Opcode = 0xA1
	OpMOD         Opcode = 0xA2
	OpPOW         Opcode = 0xA3
	OpSQRT        Opcode = 0xA4 // integer square root
	OpMODMUL      Opcode = 0xA5 // (a * b) mod m
	OpMODPOW      Opcode = 0xA6 // modular exponentiation, exponent -1 inverts
	OpSHL         Opcode = 0xA8 // shift left
	OpSHR         Opcode = 0xA9 // arithmetic shift right
	OpNOT         Opcode = 0xAA // boolean negation
	OpBOOLAND     Opcode = 0xAB
	OpBOOLOR      Opcode = 0xAC
	OpNZ          Opcode = 0xB1 // true if nonzero
	OpNUMEQUAL    Opcode = 0xB3 // numeric equality
	OpNUMNOTEQUAL Opcode = 0xB4 // numeric inequality
	OpLT          Opcode = 0xB5
	OpLE          Opcode = 0xB6
	OpGT          Opcode = 0xB7
	OpGE          Opcode = 0xB8
	OpMIN         Opcode = 0xB9
	OpMAX         Opcode = 0xBA
	OpWITHIN      Opcode = 0xBB // min <= x < max
)

// Compound types
const (
	OpPACKMAP      Opcode = 0xBE // pack n key/value pairs into a map
	OpPACKSTRUCT   Opcode = 0xBF // pack n items into a struct
	OpPACK         Opcode = 0xC0 // pack n items into an array
	OpUNPACK       Opcode = 0xC1 // unpack a container onto the stack
	OpNEWARRAY0    Opcode = 0xC2 // create an empty array
	OpNEWARRAY     Opcode = 0xC3 // create an array of popped size, null-filled
	OpNEWARRAYT    Opcode = 0xC4 // create a typed array (8-bit type tag)
	OpNEWSTRUCT0   Opcode = 0xC5 // create an empty struct
	OpNEWSTRUCT    Opcode = 0xC6 // create a struct of popped size, null-filled
	OpNEWMAP       Opcode = 0xC8 // create an empty map
	OpSIZE         Opcode = 0xCA // length of a container or byte string
	OpHASKEY       Opcode = 0xCB // key/index membership test
	OpKEYS         Opcode = 0xCC // array of map keys
	OpVALUES       Opcode = 0xCD // array of container values
	OpPICKITEM     Opcode = 0xCE // read a container element
	OpAPPEND       Opcode = 0xCF // append to an array
	OpSETITEM      Opcode = 0xD0 // write a container element
	OpREVERSEITEMS Opcode = 0xD1 // reverse an array in place
	OpREMOVE       Opcode = 0xD2 // remove a container element
	OpCLEARITEMS   Opcode = 0xD3 // remove all container elements
	OpPOPITEM      Opcode = 0xD4 // pop the last array element
)

// Types
const (
	OpISNULL  Opcode = 0xD8 // true if top of stack is null
	OpISTYPE  Opcode = 0xD9 // type check against an 8-bit type tag
	OpCONVERT Opcode = 0xDB // convert to an 8-bit type tag
)

// Extensions
const (
	OpABORTMSG  Opcode = 0xE0 // abort with a popped message
	OpASSERTMSG Opcode = 0xE1 // assert with a popped message
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpcodeInfo holds decoding metadata for an opcode. Exactly one of
// OperandBytes and PrefixBytes is nonzero for opcodes that carry an operand:
// OperandBytes is a fixed immediate width, PrefixBytes the width of a
// little-endian unsigned length prefix followed by that many data bytes.
type OpcodeInfo struct {
	Name         string
	OperandBytes int
	PrefixBytes  int
}

var opcodeTable = map[Opcode]OpcodeInfo{
	OpPushInt8:   {"PUSHINT8", 1, 0},
	OpPushInt16:  {"PUSHINT16", 2, 0},
	OpPushInt32:  {"PUSHINT32", 4, 0},
	OpPushInt64:  {"PUSHINT64", 8, 0},
	OpPushInt128: {"PUSHINT128", 16, 0},
	OpPushInt256: {"PUSHINT256", 32, 0},
	OpPushTrue:   {"PUSHT", 0, 0},
	OpPushFalse:  {"PUSHF", 0, 0},
	OpPushA:      {"PUSHA", 4, 0},
	OpPushNull:   {"PUSHNULL", 0, 0},
	OpPushData1:  {"PUSHDATA1", 0, 1},
	OpPushData2:  {"PUSHDATA2", 0, 2},
	OpPushData4:  {"PUSHDATA4", 0, 4},
	OpPushM1:     {"PUSHM1", 0, 0},
	OpPush0:      {"PUSH0", 0, 0},
	OpPush1:      {"PUSH1", 0, 0},
	OpPush2:      {"PUSH2", 0, 0},
	OpPush3:      {"PUSH3", 0, 0},
	OpPush4:      {"PUSH4", 0, 0},
	OpPush5:      {"PUSH5", 0, 0},
	OpPush6:      {"PUSH6", 0, 0},
	OpPush7:      {"PUSH7", 0, 0},
	OpPush8:      {"PUSH8", 0, 0},
	OpPush9:      {"PUSH9", 0, 0},
	OpPush10:     {"PUSH10", 0, 0},
	OpPush11:     {"PUSH11", 0, 0},
	OpPush12:     {"PUSH12", 0, 0},
	OpPush13:     {"PUSH13", 0, 0},
	OpPush14:     {"PUSH14", 0, 0},
	OpPush15:     {"PUSH15", 0, 0},
	OpPush16:     {"PUSH16", 0, 0},

	OpNOP:        {"NOP", 0, 0},
	OpJMP:        {"JMP", 1, 0},
	OpJMPL:       {"JMP_L", 4, 0},
	OpJMPIF:      {"JMPIF", 1, 0},
	OpJMPIFL:     {"JMPIF_L", 4, 0},
	OpJMPIFNOT:   {"JMPIFNOT", 1, 0},
	OpJMPIFNOTL:  {"JMPIFNOT_L", 4, 0},
	OpJMPEQ:      {"JMPEQ", 1, 0},
	OpJMPEQL:     {"JMPEQ_L", 4, 0},
	OpJMPNE:      {"JMPNE", 1, 0},
	OpJMPNEL:     {"JMPNE_L", 4, 0},
	OpJMPGT:      {"JMPGT", 1, 0},
	OpJMPGTL:     {"JMPGT_L", 4, 0},
	OpJMPGE:      {"JMPGE", 1, 0},
	OpJMPGEL:     {"JMPGE_L", 4, 0},
	OpJMPLT:      {"JMPLT", 1, 0},
	OpJMPLTL:     {"JMPLT_L", 4, 0},
	OpJMPLE:      {"JMPLE", 1, 0},
	OpJMPLEL:     {"JMPLE_L", 4, 0},
	OpCALL:       {"CALL", 1, 0},
	OpCALLL:      {"CALL_L", 4, 0},
	OpCALLA:      {"CALLA", 0, 0},
	OpCALLT:      {"CALLT", 2, 0},
	OpABORT:      {"ABORT", 0, 0},
	OpASSERT:     {"ASSERT", 0, 0},
	OpTHROW:      {"THROW", 0, 0},
	OpTRY:        {"TRY", 2, 0},
	OpTRYL:       {"TRY_L", 8, 0},
	OpENDTRY:     {"ENDTRY", 1, 0},
	OpENDTRYL:    {"ENDTRY_L", 4, 0},
	OpENDFINALLY: {"ENDFINALLY", 0, 0},
	OpRET:        {"RET", 0, 0},
	OpSYSCALL:    {"SYSCALL", 4, 0},

	OpDEPTH:    {"DEPTH", 0, 0},
	OpDROP:     {"DROP", 0, 0},
	OpNIP:      {"NIP", 0, 0},
	OpXDROP:    {"XDROP", 0, 0},
	OpCLEAR:    {"CLEAR", 0, 0},
	OpDUP:      {"DUP", 0, 0},
	OpOVER:     {"OVER", 0, 0},
	OpPICK:     {"PICK", 0, 0},
	OpTUCK:     {"TUCK", 0, 0},
	OpSWAP:     {"SWAP", 0, 0},
	OpROT:      {"ROT", 0, 0},
	OpROLL:     {"ROLL", 0, 0},
	OpREVERSE3: {"REVERSE3", 0, 0},
	OpREVERSE4: {"REVERSE4", 0, 0},
	OpREVERSEN: {"REVERSEN", 0, 0},

	OpINITSSLOT: {"INITSSLOT", 1, 0},
	OpINITSLOT:  {"INITSLOT", 2, 0},
	OpLDSFLD0:   {"LDSFLD0", 0, 0},
	OpLDSFLD1:   {"LDSFLD1", 0, 0},
	OpLDSFLD2:   {"LDSFLD2", 0, 0},
	OpLDSFLD3:   {"LDSFLD3", 0, 0},
	OpLDSFLD4:   {"LDSFLD4", 0, 0},
	OpLDSFLD5:   {"LDSFLD5", 0, 0},
	OpLDSFLD6:   {"LDSFLD6", 0, 0},
	OpLDSFLD:    {"LDSFLD", 1, 0},
	OpSTSFLD0:   {"STSFLD0", 0, 0},
	OpSTSFLD1:   {"STSFLD1", 0, 0},
	OpSTSFLD2:   {"STSFLD2", 0, 0},
	OpSTSFLD3:   {"STSFLD3", 0, 0},
	OpSTSFLD4:   {"STSFLD4", 0, 0},
	OpSTSFLD5:   {"STSFLD5", 0, 0},
	OpSTSFLD6:   {"STSFLD6", 0, 0},
	OpSTSFLD:    {"STSFLD", 1, 0},
	OpLDLOC0:    {"LDLOC0", 0, 0},
	OpLDLOC1:    {"LDLOC1", 0, 0},
	OpLDLOC2:    {"LDLOC2", 0, 0},
	OpLDLOC3:    {"LDLOC3", 0, 0},
	OpLDLOC4:    {"LDLOC4", 0, 0},
	OpLDLOC5:    {"LDLOC5", 0, 0},
	OpLDLOC6:    {"LDLOC6", 0, 0},
	OpLDLOC:     {"LDLOC", 1, 0},
	OpSTLOC0:    {"STLOC0", 0, 0},
	OpSTLOC1:    {"STLOC1", 0, 0},
	OpSTLOC2:    {"STLOC2", 0, 0},
	OpSTLOC3:    {"STLOC3", 0, 0},
	OpSTLOC4:    {"STLOC4", 0, 0},
	OpSTLOC5:    {"STLOC5", 0, 0},
	OpSTLOC6:    {"STLOC6", 0, 0},
	OpSTLOC:     {"STLOC", 1, 0},
	OpLDARG0:    {"LDARG0", 0, 0},
	OpLDARG1:    {"LDARG1", 0, 0},
	OpLDARG2:    {"LDARG2", 0, 0},
	OpLDARG3:    {"LDARG3", 0, 0},
	OpLDARG4:    {"LDARG4", 0, 0},
	OpLDARG5:    {"LDARG5", 0, 0},
	OpLDARG6:    {"LDARG6", 0, 0},
	OpLDARG:     {"LDARG", 1, 0},
	OpSTARG0:    {"STARG0", 0, 0},
	OpSTARG1:    {"STARG1", 0, 0},
	OpSTARG2:    {"STARG2", 0, 0},
	OpSTARG3:    {"STARG3", 0, 0},
	OpSTARG4:    {"STARG4", 0, 0},
	OpSTARG5:    {"STARG5", 0, 0},
	OpSTARG6:    {"STARG6", 0, 0},
	OpSTARG:     {"STARG", 1, 0},

	OpNEWBUFFER: {"NEWBUFFER", 0, 0},
	OpMEMCPY:    {"MEMCPY", 0, 0},
	OpCAT:       {"CAT", 0, 0},
	OpSUBSTR:    {"SUBSTR", 0, 0},
	OpLEFT:      {"LEFT", 0, 0},
	OpRIGHT:     {"RIGHT", 0, 0},

	OpINVERT:   {"INVERT", 0, 0},
	OpAND:      {"AND", 0, 0},
	OpOR:       {"OR", 0, 0},
	OpXOR:      {"XOR", 0, 0},
	OpEQUAL:    {"EQUAL", 0, 0},
	OpNOTEQUAL: {"NOTEQUAL", 0, 0},

	OpSIGN:        {"SIGN", 0, 0},
	OpABS:         {"ABS", 0, 0},
	OpNEGATE:      {"NEGATE", 0, 0},
	OpINC:         {"INC", 0, 0},
	OpDEC:         {"DEC", 0, 0},
	OpADD:         {"ADD", 0, 0},
	OpSUB:         {"SUB", 0, 0},
	OpMUL:         {"MUL", 0, 0},
	OpDIV:         {"DIV", 0, 0},
	OpMOD:         {"MOD", 0, 0},
	OpPOW:         {"POW", 0, 0},
	OpSQRT:        {"SQRT", 0, 0},
	OpMODMUL:      {"MODMUL", 0, 0},
	OpMODPOW:      {"MODPOW", 0, 0},
	OpSHL:         {"SHL", 0, 0},
	OpSHR:         {"SHR", 0, 0},
	OpNOT:         {"NOT", 0, 0},
	OpBOOLAND:     {"BOOLAND", 0, 0},
	OpBOOLOR:      {"BOOLOR", 0, 0},
	OpNZ:          {"NZ", 0, 0},
	OpNUMEQUAL:    {"NUMEQUAL", 0, 0},
	OpNUMNOTEQUAL: {"NUMNOTEQUAL", 0, 0},
	OpLT:          {"LT", 0, 0},
	OpLE:          {"LE", 0, 0},
	OpGT:          {"GT", 0, 0},
	OpGE:          {"GE", 0, 0},
	OpMIN:         {"MIN", 0, 0},
	OpMAX:         {"MAX", 0, 0},
	OpWITHIN:      {"WITHIN", 0, 0},

	OpPACKMAP:      {"PACKMAP", 0, 0},
	OpPACKSTRUCT:   {"PACKSTRUCT", 0, 0},
	OpPACK:         {"PACK", 0, 0},
	OpUNPACK:       {"UNPACK", 0, 0},
	OpNEWARRAY0:    {"NEWARRAY0", 0, 0},
	OpNEWARRAY:     {"NEWARRAY", 0, 0},
	OpNEWARRAYT:    {"NEWARRAY_T", 1, 0},
	OpNEWSTRUCT0:   {"NEWSTRUCT0", 0, 0},
	OpNEWSTRUCT:    {"NEWSTRUCT", 0, 0},
	OpNEWMAP:       {"NEWMAP", 0, 0},
	OpSIZE:         {"SIZE", 0, 0},
	OpHASKEY:       {"HASKEY", 0, 0},
	OpKEYS:         {"KEYS", 0, 0},
	OpVALUES:       {"VALUES", 0, 0},
	OpPICKITEM:     {"PICKITEM", 0, 0},
	OpAPPEND:       {"APPEND", 0, 0},
	OpSETITEM:      {"SETITEM", 0, 0},
	OpREVERSEITEMS: {"REVERSEITEMS", 0, 0},
	OpREMOVE:       {"REMOVE", 0, 0},
	OpCLEARITEMS:   {"CLEARITEMS", 0, 0},
	OpPOPITEM:      {"POPITEM", 0, 0},

	OpISNULL:  {"ISNULL", 0, 0},
	OpISTYPE:  {"ISTYPE", 1, 0},
	OpCONVERT: {"CONVERT", 1, 0},

	OpABORTMSG:  {"ABORTMSG", 0, 0},
	OpASSERTMSG: {"ASSERTMSG", 0, 0},
}

// IsValid reports whether the opcode is defined.
func (op Opcode) IsValid() bool {
	_, ok := opcodeTable[op]
	return ok
}

// Info returns the metadata for an opcode; ok is false for undefined codes.
func (op Opcode) Info() (OpcodeInfo, bool) {
	info, ok := opcodeTable[op]
	return info, ok
}

// Name returns the human-readable name for an opcode.
func (op Opcode) Name() string {
	if info, ok := opcodeTable[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN_%02X", byte(op))
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}
