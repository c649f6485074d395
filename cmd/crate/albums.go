package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ayusman/crate/internal/store"
)

var (
	titleFlag  string
	artistFlag string
	yearFlag   string
	genreFlag  string
	coverFlag  string
)

var albumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "List the album catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, err := setup(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		albums, err := st.Albums().List()
		if err != nil {
			return fmt.Errorf("list albums: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tARTIST\tTITLE\tYEAR\tGENRE")
		for _, a := range albums {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Artist, a.Title, a.Year, a.Genre)
		}
		return w.Flush()
	},
}

var albumsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an album to the catalog",
	Example: `  crate albums add --title "A Love Supreme" --artist "John Coltrane" --year 1965`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, err := setup(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		a := &store.Album{
			ID:       uuid.New().String(),
			Title:    titleFlag,
			Artist:   artistFlag,
			Year:     yearFlag,
			Genre:    genreFlag,
			CoverURL: coverFlag,
		}
		if err := st.Albums().Create(a); err != nil {
			return fmt.Errorf("add album: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), a.ID)
		return nil
	},
}

func init() {
	albumsAddCmd.Flags().StringVar(&titleFlag, "title", "", "Album title")
	albumsAddCmd.Flags().StringVar(&artistFlag, "artist", "", "Album artist")
	albumsAddCmd.Flags().StringVar(&yearFlag, "year", "", "Release year")
	albumsAddCmd.Flags().StringVar(&genreFlag, "genre", "", "Genre")
	albumsAddCmd.Flags().StringVar(&coverFlag, "cover", "", "Cover image URL")
	albumsAddCmd.MarkFlagRequired("title")
	albumsAddCmd.MarkFlagRequired("artist")

	albumsCmd.AddCommand(albumsAddCmd)
}

