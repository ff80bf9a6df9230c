package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/nchorder/nchorder/internal/chord"
	"github.com/nchorder/nchorder/internal/confproto"
)

var (
	portPath      string
	uploadPersist bool

	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	mainCmd = &cobra.Command{
		Use:   "chordctl",
		Short: "Talk to an nchorder device over its serial control channel",
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Show firmware version and current tunables",
		Run:   runInfo,
	}
	uploadCmd = &cobra.Command{
		Use:   "upload <layout.bin>",
		Short: "Upload a binary layout to the device",
		Args:  cobra.ExactArgs(1),
		Run:   runUpload,
	}
	inspectCmd = &cobra.Command{
		Use:   "inspect <layout.bin>",
		Short: "Decode a layout file offline and print its table counts",
		Args:  cobra.ExactArgs(1),
		Run:   runInspect,
	}
	setCmd = &cobra.Command{
		Use:   "set <id> <value>",
		Short: "Set a device tunable by numeric id",
		Args:  cobra.ExactArgs(2),
		Run:   runSet,
	}
	saveCmd = &cobra.Command{
		Use:   "save",
		Short: "Persist the active layout to device flash",
		Run:   runSave,
	}
	loadCmd = &cobra.Command{
		Use:   "load",
		Short: "Restore the layout persisted in device flash",
		Run:   runLoad,
	}
	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Reset device tunables to factory values",
		Run:   runReset,
	}
)

func openClient() *confproto.Client {
	mode := &serial.Mode{BaudRate: 115200}
	port, err := serial.Open(portPath, mode)
	if err != nil {
		log.Fatal().Err(err).Str("port", portPath).Msg("cannot open serial port")
	}
	return confproto.NewClient(port)
}

func runInfo(cmd *cobra.Command, args []string) {
	c := openClient()
	ver, err := c.GetVersion()
	if err != nil {
		log.Fatal().Err(err).Msg("version query failed")
	}
	cfg, err := c.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("config query failed")
	}
	fmt.Printf("firmware v%d.%d, hardware rev %d\n", ver.Major, ver.Minor, ver.HWRev)
	fmt.Printf("press threshold:   %d\n", cfg.ThresholdPress)
	fmt.Printf("release threshold: %d\n", cfg.ThresholdRelease)
	fmt.Printf("debounce:          %d ms\n", cfg.DebounceMs)
	fmt.Printf("poll rate:         %d ms\n", cfg.PollRateMs)
}

func runUpload(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("cannot read layout file")
	}
	c := openClient()
	if err := c.UploadLayout(data, uploadPersist); err != nil {
		log.Fatal().Err(err).Msg("upload failed")
	}
	log.Info().Int("bytes", len(data)).Bool("persisted", uploadPersist).Msg("layout uploaded")
}

func runInspect(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("cannot read layout file")
	}
	tables := chord.NewTables(&log)
	if err := tables.LoadBinary(data); err != nil {
		log.Fatal().Err(err).Msg("layout rejected")
	}
	system, multi, unknown := tables.SkippedDetails()
	fmt.Printf("keys:      %d\n", tables.KeyCount())
	fmt.Printf("mouse:     %d\n", tables.MouseCount())
	fmt.Printf("consumer:  %d\n", tables.ConsumerCount())
	fmt.Printf("multichar: %d\n", tables.MultiCharCount())
	fmt.Printf("skipped:   %d (system %d, multichar %d, unknown %d)\n",
		tables.SkippedCount(), system, multi, unknown)
}

func runSet(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseUint(args[0], 0, 8)
	if err != nil {
		log.Fatal().Err(err).Msg("bad tunable id")
	}
	value, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		log.Fatal().Err(err).Msg("bad value")
	}
	if err := openClient().SetConfig(uint8(id), uint16(value)); err != nil {
		log.Fatal().Err(err).Msg("set failed")
	}
}

func runSave(cmd *cobra.Command, args []string) {
	if err := openClient().SaveToFlash(); err != nil {
		log.Fatal().Err(err).Msg("save failed")
	}
}

func runLoad(cmd *cobra.Command, args []string) {
	if err := openClient().LoadFromFlash(); err != nil {
		log.Fatal().Err(err).Msg("load failed")
	}
}

func runReset(cmd *cobra.Command, args []string) {
	if err := openClient().ResetDefaults(); err != nil {
		log.Fatal().Err(err).Msg("reset failed")
	}
}

func main() {
	uploadCmd.Flags().BoolVar(&uploadPersist, "persist", false, "Also save the uploaded layout to device flash")
	mainCmd.PersistentFlags().StringVarP(&portPath, "port", "p", "/dev/ttyACM0", "Serial port the device is attached to")
	mainCmd.AddCommand(infoCmd, inspectCmd, uploadCmd, setCmd, saveCmd, loadCmd, resetCmd)
	if err := mainCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
