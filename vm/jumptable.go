package vm

import "fmt"

// handler executes one opcode against the engine.
type handler func(e *Engine, in *Instruction) error

// jumpTable maps every opcode to its handler. It is fixed at init time;
// dispatch is a single indexed load.
var jumpTable [256]handler

func dispatch(e *Engine, in *Instruction) error {
	h := jumpTable[in.Opcode]
	if h == nil {
		return fmt.Errorf("%w: 0x%02X", ErrInvalidOpcode, byte(in.Opcode))
	}
	return h(e, in)
}

func init() {
	for op := OpPushInt8; op <= OpPushInt256; op++ {
		jumpTable[op] = opPushInt
	}
	jumpTable[OpPushTrue] = opPushTrue
	jumpTable[OpPushFalse] = opPushFalse
	jumpTable[OpPushA] = opPushA
	jumpTable[OpPushNull] = opPushNull
	jumpTable[OpPushData1] = opPushData
	jumpTable[OpPushData2] = opPushData
	jumpTable[OpPushData4] = opPushData
	for op := OpPushM1; op <= OpPush16; op++ {
		jumpTable[op] = opPushConst
	}

	jumpTable[OpNOP] = opNop
	jumpTable[OpJMP] = opJmp
	jumpTable[OpJMPL] = opJmp
	jumpTable[OpJMPIF] = opJmpIf
	jumpTable[OpJMPIFL] = opJmpIf
	jumpTable[OpJMPIFNOT] = opJmpIfNot
	jumpTable[OpJMPIFNOTL] = opJmpIfNot
	jumpTable[OpJMPEQ] = opJmpEq
	jumpTable[OpJMPEQL] = opJmpEq
	jumpTable[OpJMPNE] = opJmpNe
	jumpTable[OpJMPNEL] = opJmpNe
	jumpTable[OpJMPGT] = opJmpGt
	jumpTable[OpJMPGTL] = opJmpGt
	jumpTable[OpJMPGE] = opJmpGe
	jumpTable[OpJMPGEL] = opJmpGe
	jumpTable[OpJMPLT] = opJmpLt
	jumpTable[OpJMPLTL] = opJmpLt
	jumpTable[OpJMPLE] = opJmpLe
	jumpTable[OpJMPLEL] = opJmpLe
	jumpTable[OpCALL] = opCall
	jumpTable[OpCALLL] = opCall
	jumpTable[OpCALLA] = opCallA
	jumpTable[OpCALLT] = opCallT
	jumpTable[OpABORT] = opAbort
	jumpTable[OpASSERT] = opAssert
	jumpTable[OpTHROW] = opThrow
	jumpTable[OpTRY] = opTry
	jumpTable[OpTRYL] = opTry
	jumpTable[OpENDTRY] = opEndTry
	jumpTable[OpENDTRYL] = opEndTry
	jumpTable[OpENDFINALLY] = opEndFinally
	jumpTable[OpRET] = opRet
	jumpTable[OpSYSCALL] = opSyscall
	jumpTable[OpABORTMSG] = opAbortMsg
	jumpTable[OpASSERTMSG] = opAssertMsg

	jumpTable[OpDEPTH] = opDepth
	jumpTable[OpDROP] = opDrop
	jumpTable[OpNIP] = opNip
	jumpTable[OpXDROP] = opXDrop
	jumpTable[OpCLEAR] = opClear
	jumpTable[OpDUP] = opDup
	jumpTable[OpOVER] = opOver
	jumpTable[OpPICK] = opPick
	jumpTable[OpTUCK] = opTuck
	jumpTable[OpSWAP] = opSwap
	jumpTable[OpROT] = opRot
	jumpTable[OpROLL] = opRoll
	jumpTable[OpREVERSE3] = opReverse3
	jumpTable[OpREVERSE4] = opReverse4
	jumpTable[OpREVERSEN] = opReverseN

	jumpTable[OpINITSSLOT] = opInitSSlot
	jumpTable[OpINITSLOT] = opInitSlot
	for op := OpLDSFLD0; op <= OpLDSFLD6; op++ {
		jumpTable[op] = opLdSFldN
	}
	jumpTable[OpLDSFLD] = opLdSFld
	for op := OpSTSFLD0; op <= OpSTSFLD6; op++ {
		jumpTable[op] = opStSFldN
	}
	jumpTable[OpSTSFLD] = opStSFld
	for op := OpLDLOC0; op <= OpLDLOC6; op++ {
		jumpTable[op] = opLdLocN
	}
	jumpTable[OpLDLOC] = opLdLoc
	for op := OpSTLOC0; op <= OpSTLOC6; op++ {
		jumpTable[op] = opStLocN
	}
	jumpTable[OpSTLOC] = opStLoc
	for op := OpLDARG0; op <= OpLDARG6; op++ {
		jumpTable[op] = opLdArgN
	}
	jumpTable[OpLDARG] = opLdArg
	for op := OpSTARG0; op <= OpSTARG6; op++ {
		jumpTable[op] = opStArgN
	}
	jumpTable[OpSTARG] = opStArg

	jumpTable[OpNEWBUFFER] = opNewBuffer
	jumpTable[OpMEMCPY] = opMemCpy
	jumpTable[OpCAT] = opCat
	jumpTable[OpSUBSTR] = opSubStr
	jumpTable[OpLEFT] = opLeft
	jumpTable[OpRIGHT] = opRight

	jumpTable[OpINVERT] = opInvert
	jumpTable[OpAND] = opAnd
	jumpTable[OpOR] = opOr
	jumpTable[OpXOR] = opXor
	jumpTable[OpEQUAL] = opEqual
	jumpTable[OpNOTEQUAL] = opNotEqual

	jumpTable[OpSIGN] = opSign
	jumpTable[OpABS] = opAbs
	jumpTable[OpNEGATE] = opNegate
	jumpTable[OpINC] = opInc
	jumpTable[OpDEC] = opDec
	jumpTable[OpADD] = opAdd
	jumpTable[OpSUB] = opSub
	jumpTable[OpMUL] = opMul
	jumpTable[OpDIV] = opDiv
	jumpTable[OpMOD] = opMod
	jumpTable[OpPOW] = opPow
	jumpTable[OpSQRT] = opSqrt
	jumpTable[OpMODMUL] = opModMul
	jumpTable[OpMODPOW] = opModPow
	jumpTable[OpSHL] = opShl
	jumpTable[OpSHR] = opShr
	jumpTable[OpNOT] = opNot
	jumpTable[OpBOOLAND] = opBoolAnd
	jumpTable[OpBOOLOR] = opBoolOr
	jumpTable[OpNZ] = opNz
	jumpTable[OpNUMEQUAL] = opNumEqual
	jumpTable[OpNUMNOTEQUAL] = opNumNotEqual
	jumpTable[OpLT] = opLt
	jumpTable[OpLE] = opLe
	jumpTable[OpGT] = opGt
	jumpTable[OpGE] = opGe
	jumpTable[OpMIN] = opMin
	jumpTable[OpMAX] = opMax
	jumpTable[OpWITHIN] = opWithin

	jumpTable[OpPACKMAP] = opPackMap
	jumpTable[OpPACKSTRUCT] = opPackStruct
	jumpTable[OpPACK] = opPack
	jumpTable[OpUNPACK] = opUnpack
	jumpTable[OpNEWARRAY0] = opNewArray0
	jumpTable[OpNEWARRAY] = opNewArray
	jumpTable[OpNEWARRAYT] = opNewArrayT
	jumpTable[OpNEWSTRUCT0] = opNewStruct0
	jumpTable[OpNEWSTRUCT] = opNewStruct
	jumpTable[OpNEWMAP] = opNewMap
	jumpTable[OpSIZE] = opSize
	jumpTable[OpHASKEY] = opHasKey
	jumpTable[OpKEYS] = opKeys
	jumpTable[OpVALUES] = opValues
	jumpTable[OpPICKITEM] = opPickItem
	jumpTable[OpAPPEND] = opAppend
	jumpTable[OpSETITEM] = opSetItem
	jumpTable[OpREVERSEITEMS] = opReverseItems
	jumpTable[OpREMOVE] = opRemove
	jumpTable[OpCLEARITEMS] = opClearItems
	jumpTable[OpPOPITEM] = opPopItem

	jumpTable[OpISNULL] = opIsNull
	jumpTable[OpISTYPE] = opIsType
	jumpTable[OpCONVERT] = opConvert
}
