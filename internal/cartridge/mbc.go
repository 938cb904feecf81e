package cartridge

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"
)

// boolToByte packs a bool into the 0/1 byte convention BankState blobs use.
func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// MBC (Memory Bank Controller) interface. Every supported controller maps
// its ROM/RAM windows through this surface; the
// MMU never needs to know which variant it is talking to.
type MBC interface {
	// ReadByte reads a byte from the cartridge at the given address.
	// Address range: 0x0000-0x7FFF (ROM) and 0xA000-0xBFFF (external RAM).
	ReadByte(address uint16) uint8

	// WriteByte writes a byte to the cartridge: 0x0000-0x7FFF selects banks
	// or enables RAM, 0xA000-0xBFFF writes external RAM (or an RTC register).
	WriteByte(address uint16, value uint8)

	// Tick advances any cartridge-internal clock (only MBC3's RTC cares).
	Tick(cycles int)

	GetCurrentROMBank() int
	GetCurrentRAMBank() int
	HasRAM() bool
	IsRAMEnabled() bool

	// RAM returns the raw battery-backed RAM image for persistence (nil if none).
	RAM() []byte

	// BankState returns the controller's internal bank-select/RTC latch
	// state (not ROM/RAM contents) as an opaque blob, for save states.
	BankState() []byte

	// RestoreBankState restores state previously returned by BankState.
	RestoreBankState(data []byte) error
}

// MBC0 represents cartridges with no memory bank controller (ROM ONLY).
type MBC0 struct {
	romData []byte
}

func NewMBC0(romData []byte) *MBC0 {
	return &MBC0{romData: romData}
}

func (mbc *MBC0) ReadByte(address uint16) uint8 {
	if address <= 0x7FFF {
		if int(address) < len(mbc.romData) {
			return mbc.romData[address]
		}
		return 0xFF
	}
	return 0xFF
}

func (mbc *MBC0) WriteByte(address uint16, value uint8) {}
func (mbc *MBC0) Tick(cycles int)                        {}
func (mbc *MBC0) GetCurrentROMBank() int                  { return 0 }
func (mbc *MBC0) GetCurrentRAMBank() int                  { return 0 }
func (mbc *MBC0) HasRAM() bool                            { return false }
func (mbc *MBC0) IsRAMEnabled() bool                      { return false }
func (mbc *MBC0) RAM() []byte                             { return nil }
func (mbc *MBC0) BankState() []byte                       { return nil }
func (mbc *MBC0) RestoreBankState(data []byte) error      { return nil }

// MBC1Controller implements the most common banking scheme: a 5-bit low ROM
// bank register, a 2-bit upper register shared between ROM-bank-high-bits
// and RAM-bank duty, and a 1-bit mode selector.
type MBC1Controller struct {
	romData []byte
	ramData []byte

	romBankLow  uint8 // 5 bits, 0 promoted to 1 on write
	upperBits   uint8 // 2 bits: ROM bank high bits; in mode 1 also the RAM bank and the 0x0000 window
	bankingMode uint8 // 0 = ROM banking mode, 1 = RAM/advanced banking mode
	ramEnabled  bool

	romBankCount int
	ramBankCount int
}

func NewMBC1(romData []byte, ramSize int) *MBC1Controller {
	romBankCount := len(romData) / (16 * 1024)
	if romBankCount == 0 {
		romBankCount = 1
	}
	ramBankCount := ramSize / (8 * 1024)

	var ramData []byte
	if ramSize > 0 {
		ramData = make([]byte, ramSize)
	}

	return &MBC1Controller{
		romData:      romData,
		ramData:      ramData,
		romBankLow:   1,
		romBankCount: romBankCount,
		ramBankCount: ramBankCount,
	}
}

// effectiveROMBank is the bank mapped at 0x4000-0x7FFF.
func (mbc *MBC1Controller) effectiveROMBank() int {
	bank := int(mbc.upperBits)<<5 | int(mbc.romBankLow)
	if mbc.romBankCount > 0 {
		bank %= mbc.romBankCount
	}
	return bank
}

// zeroWindowROMBank is the bank mapped at 0x0000-0x3FFF: always bank 0 in
// mode 0, but in mode 1 the upper bits register also shifts this window
// (the "0x40 at 0x0000" quirk large multi-bank carts rely on).
func (mbc *MBC1Controller) zeroWindowROMBank() int {
	if mbc.bankingMode == 0 {
		return 0
	}
	bank := int(mbc.upperBits) << 5
	if mbc.romBankCount > 0 {
		bank %= mbc.romBankCount
	}
	return bank
}

func (mbc *MBC1Controller) ReadByte(address uint16) uint8 {
	if address <= 0x3FFF {
		romAddress := mbc.zeroWindowROMBank()*16*1024 + int(address)
		if romAddress < len(mbc.romData) {
			return mbc.romData[romAddress]
		}
		return 0xFF
	}

	if address <= 0x7FFF {
		romAddress := mbc.effectiveROMBank()*16*1024 + int(address-0x4000)
		if romAddress < len(mbc.romData) {
			return mbc.romData[romAddress]
		}
		return 0xFF
	}

	if address >= 0xA000 && address <= 0xBFFF {
		if !mbc.ramEnabled || len(mbc.ramData) == 0 {
			return 0xFF
		}
		ramAddress := mbc.ramWindowBank()*8*1024 + int(address-0xA000)
		if ramAddress < len(mbc.ramData) {
			return mbc.ramData[ramAddress]
		}
		return 0xFF
	}

	return 0xFF
}

func (mbc *MBC1Controller) ramWindowBank() int {
	if mbc.bankingMode == 0 {
		return 0
	}
	bank := int(mbc.upperBits)
	if mbc.ramBankCount > 0 {
		bank %= mbc.ramBankCount
	}
	return bank
}

func (mbc *MBC1Controller) WriteByte(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		mbc.ramEnabled = (value & 0x0F) == 0x0A

	case address <= 0x3FFF:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		mbc.romBankLow = bank

	case address <= 0x5FFF:
		mbc.upperBits = value & 0x03

	case address <= 0x7FFF:
		mbc.bankingMode = value & 0x01

	case address >= 0xA000 && address <= 0xBFFF:
		if !mbc.ramEnabled || len(mbc.ramData) == 0 {
			return
		}
		ramAddress := mbc.ramWindowBank()*8*1024 + int(address-0xA000)
		if ramAddress < len(mbc.ramData) {
			mbc.ramData[ramAddress] = value
		}
	}
}

func (mbc *MBC1Controller) Tick(cycles int) {}

func (mbc *MBC1Controller) GetCurrentROMBank() int { return mbc.effectiveROMBank() }
func (mbc *MBC1Controller) GetCurrentRAMBank() int { return mbc.ramWindowBank() }
func (mbc *MBC1Controller) HasRAM() bool           { return len(mbc.ramData) > 0 }
func (mbc *MBC1Controller) IsRAMEnabled() bool     { return mbc.ramEnabled }
func (mbc *MBC1Controller) RAM() []byte            { return mbc.ramData }

func (mbc *MBC1Controller) BankState() []byte {
	return []byte{mbc.romBankLow, mbc.upperBits, mbc.bankingMode, boolToByte(mbc.ramEnabled)}
}

func (mbc *MBC1Controller) RestoreBankState(data []byte) error {
	if len(data) != 4 {
		return fmt.Errorf("mbc1 bank state: want 4 bytes, got %d", len(data))
	}
	mbc.romBankLow = data[0]
	mbc.upperBits = data[1]
	mbc.bankingMode = data[2]
	mbc.ramEnabled = data[3] != 0
	return nil
}

// MBC2Controller has a 4-bit ROM bank register addressed via address bit 8
// and 512 nibbles (256 bytes) of built-in RAM; no external RAM chip exists.
type MBC2Controller struct {
	romData []byte
	ram     [512]uint8 // only the low nibble of each byte is meaningful

	romBank    uint8
	ramEnabled bool

	romBankCount int
}

func NewMBC2(romData []byte) *MBC2Controller {
	romBankCount := len(romData) / (16 * 1024)
	if romBankCount == 0 {
		romBankCount = 1
	}
	return &MBC2Controller{romData: romData, romBank: 1, romBankCount: romBankCount}
}

func (mbc *MBC2Controller) ReadByte(address uint16) uint8 {
	if address <= 0x3FFF {
		if int(address) < len(mbc.romData) {
			return mbc.romData[address]
		}
		return 0xFF
	}
	if address <= 0x7FFF {
		bank := int(mbc.romBank) % mbc.romBankCount
		romAddress := bank*16*1024 + int(address-0x4000)
		if romAddress < len(mbc.romData) {
			return mbc.romData[romAddress]
		}
		return 0xFF
	}
	if address >= 0xA000 && address <= 0xBFFF {
		if !mbc.ramEnabled {
			return 0xFF
		}
		return mbc.ram[int(address-0xA000)%512] | 0xF0
	}
	return 0xFF
}

func (mbc *MBC2Controller) WriteByte(address uint16, value uint8) {
	if address <= 0x3FFF {
		// Bit 8 of the address selects RAM-enable vs ROM-bank-select.
		if address&0x0100 == 0 {
			mbc.ramEnabled = (value & 0x0F) == 0x0A
		} else {
			bank := value & 0x0F
			if bank == 0 {
				bank = 1
			}
			mbc.romBank = bank
		}
		return
	}
	if address >= 0xA000 && address <= 0xBFFF {
		if !mbc.ramEnabled {
			return
		}
		mbc.ram[int(address-0xA000)%512] = value & 0x0F
	}
}

func (mbc *MBC2Controller) Tick(cycles int)        {}
func (mbc *MBC2Controller) GetCurrentROMBank() int { return int(mbc.romBank) % mbc.romBankCount }
func (mbc *MBC2Controller) GetCurrentRAMBank() int { return 0 }
func (mbc *MBC2Controller) HasRAM() bool           { return true }
func (mbc *MBC2Controller) IsRAMEnabled() bool     { return mbc.ramEnabled }
func (mbc *MBC2Controller) RAM() []byte            { return mbc.ram[:] }

func (mbc *MBC2Controller) BankState() []byte {
	return []byte{mbc.romBank, boolToByte(mbc.ramEnabled)}
}

func (mbc *MBC2Controller) RestoreBankState(data []byte) error {
	if len(data) != 2 {
		return fmt.Errorf("mbc2 bank state: want 2 bytes, got %d", len(data))
	}
	mbc.romBank = data[0]
	mbc.ramEnabled = data[1] != 0
	return nil
}

// rtcRegisters holds the five MBC3 real-time-clock registers plus the
// latched snapshot games actually read.
type rtcRegisters struct {
	seconds, minutes, hours uint8
	dayLow                  uint8 // day counter bits 0-7
	dayHigh                 uint8 // bit 0: day bit 8, bit 6: halt, bit 7: day-carry

	latched     rtcRegisters_latch
	subSecondNs int64
}

type rtcRegisters_latch struct {
	seconds, minutes, hours, dayLow, dayHigh uint8
}

// MBC3Controller adds a 7-bit ROM bank, a 2-bit RAM bank shared with five
// selectable RTC registers, and the RTC's wall-clock ticking.
type MBC3Controller struct {
	romData []byte
	ramData []byte

	romBank    uint8
	ramRTCSel  uint8 // 0x00-0x03 selects RAM bank, 0x08-0x0C selects an RTC register
	ramEnabled bool

	hasRTC      bool
	rtc         rtcRegisters
	latchWriteSeen0 bool

	romBankCount int
	ramBankCount int
}

func NewMBC3(romData []byte, ramSize int, hasRTC bool) *MBC3Controller {
	romBankCount := len(romData) / (16 * 1024)
	if romBankCount == 0 {
		romBankCount = 1
	}
	ramBankCount := ramSize / (8 * 1024)

	var ramData []byte
	if ramSize > 0 {
		ramData = make([]byte, ramSize)
	}

	return &MBC3Controller{
		romData:      romData,
		ramData:      ramData,
		romBank:      1,
		hasRTC:       hasRTC,
		romBankCount: romBankCount,
		ramBankCount: ramBankCount,
	}
}

func (mbc *MBC3Controller) ReadByte(address uint16) uint8 {
	if address <= 0x3FFF {
		if int(address) < len(mbc.romData) {
			return mbc.romData[address]
		}
		return 0xFF
	}
	if address <= 0x7FFF {
		bank := int(mbc.romBank)
		if mbc.romBankCount > 0 {
			bank %= mbc.romBankCount
		}
		romAddress := bank*16*1024 + int(address-0x4000)
		if romAddress < len(mbc.romData) {
			return mbc.romData[romAddress]
		}
		return 0xFF
	}
	if address >= 0xA000 && address <= 0xBFFF {
		if !mbc.ramEnabled {
			return 0xFF
		}
		if mbc.ramRTCSel <= 0x03 {
			if len(mbc.ramData) == 0 {
				return 0xFF
			}
			ramAddress := int(mbc.ramRTCSel)*8*1024 + int(address-0xA000)
			if ramAddress < len(mbc.ramData) {
				return mbc.ramData[ramAddress]
			}
			return 0xFF
		}
		if mbc.hasRTC {
			return mbc.readLatchedRTC()
		}
		return 0xFF
	}
	return 0xFF
}

func (mbc *MBC3Controller) readLatchedRTC() uint8 {
	l := mbc.rtc.latched
	switch mbc.ramRTCSel {
	case 0x08:
		return l.seconds
	case 0x09:
		return l.minutes
	case 0x0A:
		return l.hours
	case 0x0B:
		return l.dayLow
	case 0x0C:
		return l.dayHigh
	default:
		return 0xFF
	}
}

func (mbc *MBC3Controller) WriteByte(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		mbc.ramEnabled = (value & 0x0F) == 0x0A

	case address <= 0x3FFF:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		mbc.romBank = bank

	case address <= 0x5FFF:
		mbc.ramRTCSel = value

	case address <= 0x7FFF:
		// Latch sequence: write 0x00 then 0x01.
		if value == 0x00 {
			mbc.latchWriteSeen0 = true
		} else if value == 0x01 && mbc.latchWriteSeen0 {
			mbc.latchRTC()
			mbc.latchWriteSeen0 = false
		} else {
			mbc.latchWriteSeen0 = false
		}

	case address >= 0xA000 && address <= 0xBFFF:
		if !mbc.ramEnabled {
			return
		}
		if mbc.ramRTCSel <= 0x03 {
			if len(mbc.ramData) == 0 {
				return
			}
			ramAddress := int(mbc.ramRTCSel)*8*1024 + int(address-0xA000)
			if ramAddress < len(mbc.ramData) {
				mbc.ramData[ramAddress] = value
			}
			return
		}
		if mbc.hasRTC {
			mbc.writeRTC(value)
		}
	}
}

func (mbc *MBC3Controller) writeRTC(value uint8) {
	switch mbc.ramRTCSel {
	case 0x08:
		mbc.rtc.seconds = value % 60
	case 0x09:
		mbc.rtc.minutes = value % 60
	case 0x0A:
		mbc.rtc.hours = value % 24
	case 0x0B:
		mbc.rtc.dayLow = value
	case 0x0C:
		mbc.rtc.dayHigh = value & 0xC1
	}
}

func (mbc *MBC3Controller) latchRTC() {
	mbc.rtc.latched = rtcRegisters_latch{
		seconds: mbc.rtc.seconds,
		minutes: mbc.rtc.minutes,
		hours:   mbc.rtc.hours,
		dayLow:  mbc.rtc.dayLow,
		dayHigh: mbc.rtc.dayHigh,
	}
}

// Tick advances the RTC by the wall-clock time implied by cycles T-cycles
// at the DMG clock rate, ticking one second per wall-clock second while the
// halt bit (dayHigh bit 6) is clear.
func (mbc *MBC3Controller) Tick(cycles int) {
	if !mbc.hasRTC || mbc.rtc.dayHigh&0x40 != 0 {
		return
	}
	const cpuHz = 4194304
	mbc.rtc.subSecondNs += int64(cycles) * int64(time.Second) / cpuHz
	for mbc.rtc.subSecondNs >= int64(time.Second) {
		mbc.rtc.subSecondNs -= int64(time.Second)
		mbc.tickSecond()
	}
}

func (mbc *MBC3Controller) tickSecond() {
	mbc.rtc.seconds++
	if mbc.rtc.seconds < 60 {
		return
	}
	mbc.rtc.seconds = 0
	mbc.rtc.minutes++
	if mbc.rtc.minutes < 60 {
		return
	}
	mbc.rtc.minutes = 0
	mbc.rtc.hours++
	if mbc.rtc.hours < 24 {
		return
	}
	mbc.rtc.hours = 0

	day := uint16(mbc.rtc.dayHigh&0x01)<<8 | uint16(mbc.rtc.dayLow)
	day++
	if day > 511 {
		day = 0
		mbc.rtc.dayHigh |= 0x80 // day-carry/overflow bit latches
	}
	mbc.rtc.dayLow = uint8(day)
	mbc.rtc.dayHigh = (mbc.rtc.dayHigh &^ 0x01) | uint8(day>>8)
}

func (mbc *MBC3Controller) GetCurrentROMBank() int {
	bank := int(mbc.romBank)
	if mbc.romBankCount > 0 {
		bank %= mbc.romBankCount
	}
	return bank
}
func (mbc *MBC3Controller) GetCurrentRAMBank() int {
	if mbc.ramRTCSel <= 0x03 {
		return int(mbc.ramRTCSel)
	}
	return 0
}
func (mbc *MBC3Controller) HasRAM() bool       { return len(mbc.ramData) > 0 }
func (mbc *MBC3Controller) IsRAMEnabled() bool { return mbc.ramEnabled }
func (mbc *MBC3Controller) RAM() []byte        { return mbc.ramData }

// BankState packs the bank/RTC-select registers and the full RTC (live plus
// latched copy) so a save state can reproduce wall-clock-accurate timekeeping.
func (mbc *MBC3Controller) BankState() []byte {
	buf := make([]byte, 0, 24)
	buf = append(buf, mbc.romBank, mbc.ramRTCSel, boolToByte(mbc.ramEnabled), boolToByte(mbc.latchWriteSeen0))
	buf = append(buf, mbc.rtc.seconds, mbc.rtc.minutes, mbc.rtc.hours, mbc.rtc.dayLow, mbc.rtc.dayHigh)
	l := mbc.rtc.latched
	buf = append(buf, l.seconds, l.minutes, l.hours, l.dayLow, l.dayHigh)
	var sub [8]byte
	binary.BigEndian.PutUint64(sub[:], uint64(mbc.rtc.subSecondNs))
	buf = append(buf, sub[:]...)
	return buf
}

func (mbc *MBC3Controller) RestoreBankState(data []byte) error {
	if len(data) != 22 {
		return fmt.Errorf("mbc3 bank state: want 22 bytes, got %d", len(data))
	}
	mbc.romBank = data[0]
	mbc.ramRTCSel = data[1]
	mbc.ramEnabled = data[2] != 0
	mbc.latchWriteSeen0 = data[3] != 0
	mbc.rtc.seconds, mbc.rtc.minutes, mbc.rtc.hours = data[4], data[5], data[6]
	mbc.rtc.dayLow, mbc.rtc.dayHigh = data[7], data[8]
	mbc.rtc.latched = rtcRegisters_latch{
		seconds: data[9], minutes: data[10], hours: data[11],
		dayLow: data[12], dayHigh: data[13],
	}
	mbc.rtc.subSecondNs = int64(binary.BigEndian.Uint64(data[14:22]))
	return nil
}

// MBC5Controller uses a full 9-bit ROM bank register (split across two
// write windows) and a 4-bit RAM bank; unlike MBC1/2/3, bank 0 is a valid
// ROM selection rather than being promoted to 1.
type MBC5Controller struct {
	romData []byte
	ramData []byte

	romBankLow  uint8 // bits 0-7
	romBankHigh uint8 // bit 8
	ramBank     uint8 // 4 bits
	ramEnabled  bool

	romBankCount int
	ramBankCount int
}

func NewMBC5(romData []byte, ramSize int) *MBC5Controller {
	romBankCount := len(romData) / (16 * 1024)
	if romBankCount == 0 {
		romBankCount = 1
	}
	ramBankCount := ramSize / (8 * 1024)

	var ramData []byte
	if ramSize > 0 {
		ramData = make([]byte, ramSize)
	}

	return &MBC5Controller{
		romData:      romData,
		ramData:      ramData,
		romBankLow:   1,
		romBankCount: romBankCount,
		ramBankCount: ramBankCount,
	}
}

func (mbc *MBC5Controller) romBank() int {
	bank := int(mbc.romBankHigh)<<8 | int(mbc.romBankLow)
	if mbc.romBankCount > 0 {
		bank %= mbc.romBankCount
	}
	return bank
}

func (mbc *MBC5Controller) ReadByte(address uint16) uint8 {
	if address <= 0x3FFF {
		if int(address) < len(mbc.romData) {
			return mbc.romData[address]
		}
		return 0xFF
	}
	if address <= 0x7FFF {
		romAddress := mbc.romBank()*16*1024 + int(address-0x4000)
		if romAddress < len(mbc.romData) {
			return mbc.romData[romAddress]
		}
		return 0xFF
	}
	if address >= 0xA000 && address <= 0xBFFF {
		if !mbc.ramEnabled || len(mbc.ramData) == 0 {
			return 0xFF
		}
		bank := int(mbc.ramBank)
		if mbc.ramBankCount > 0 {
			bank %= mbc.ramBankCount
		}
		ramAddress := bank*8*1024 + int(address-0xA000)
		if ramAddress < len(mbc.ramData) {
			return mbc.ramData[ramAddress]
		}
		return 0xFF
	}
	return 0xFF
}

func (mbc *MBC5Controller) WriteByte(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		mbc.ramEnabled = (value & 0x0F) == 0x0A

	case address <= 0x2FFF:
		mbc.romBankLow = value

	case address <= 0x3FFF:
		mbc.romBankHigh = value & 0x01

	case address <= 0x5FFF:
		mbc.ramBank = value & 0x0F

	case address >= 0xA000 && address <= 0xBFFF:
		if !mbc.ramEnabled || len(mbc.ramData) == 0 {
			return
		}
		bank := int(mbc.ramBank)
		if mbc.ramBankCount > 0 {
			bank %= mbc.ramBankCount
		}
		ramAddress := bank*8*1024 + int(address-0xA000)
		if ramAddress < len(mbc.ramData) {
			mbc.ramData[ramAddress] = value
		}
	}
}

func (mbc *MBC5Controller) Tick(cycles int)        {}
func (mbc *MBC5Controller) GetCurrentROMBank() int { return mbc.romBank() }
func (mbc *MBC5Controller) GetCurrentRAMBank() int { return int(mbc.ramBank) }
func (mbc *MBC5Controller) HasRAM() bool           { return len(mbc.ramData) > 0 }
func (mbc *MBC5Controller) IsRAMEnabled() bool     { return mbc.ramEnabled }
func (mbc *MBC5Controller) RAM() []byte            { return mbc.ramData }

func (mbc *MBC5Controller) BankState() []byte {
	return []byte{mbc.romBankLow, mbc.romBankHigh, mbc.ramBank, boolToByte(mbc.ramEnabled)}
}

func (mbc *MBC5Controller) RestoreBankState(data []byte) error {
	if len(data) != 4 {
		return fmt.Errorf("mbc5 bank state: want 4 bytes, got %d", len(data))
	}
	mbc.romBankLow = data[0]
	mbc.romBankHigh = data[1]
	mbc.ramBank = data[2]
	mbc.ramEnabled = data[3] != 0
	return nil
}

// CreateMBC creates the appropriate MBC for a cartridge based on its header
// type byte, falling back to ROM-only with a warning for unknown types.
func CreateMBC(cartridge *Cartridge) (MBC, error) {
	switch cartridge.CartridgeType {
	case ROM_ONLY:
		return NewMBC0(cartridge.ROMData), nil

	case MBC1, MBC1_RAM, MBC1_RAM_BATTERY:
		return NewMBC1(cartridge.ROMData, cartridge.RAMSize), nil

	case MBC2, MBC2_BATTERY:
		return NewMBC2(cartridge.ROMData), nil

	case MBC3_TIMER_BATTERY, MBC3_TIMER_RAM_BATTERY:
		return NewMBC3(cartridge.ROMData, cartridge.RAMSize, true), nil

	case MBC3, MBC3_RAM, MBC3_RAM_BATTERY:
		return NewMBC3(cartridge.ROMData, cartridge.RAMSize, false), nil

	case MBC5, MBC5_RAM, MBC5_RAM_BATTERY, MBC5_RUMBLE, MBC5_RUMBLE_RAM, MBC5_RUMBLE_RAM_BATTERY:
		return NewMBC5(cartridge.ROMData, cartridge.RAMSize), nil

	default:
		fmt.Fprintf(os.Stderr, "warning: unsupported cartridge type %s, falling back to ROM-only\n",
			cartridge.GetCartridgeTypeName())
		return NewMBC0(cartridge.ROMData), nil
	}
}
