package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
)

func (a *App) list(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: list <entity> [search]")
	}
	entity := args[0]
	search := ""
	if len(args) > 1 {
		search = args[1]
	}

	w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
	defer w.Flush()

	switch entity {
	case "categories":
		rows, err := a.categories.GetAll(ctx, search, false)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tCODE\tNAME")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.CategoryID, r.Code, r.Name)
		}
	case "subcategories":
		rows, err := a.subcategories.GetAll(ctx, search, false)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tCODE\tNAME\tCATEGORY")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.SubCategoryID, r.Code, r.Name, r.CategoryName)
		}
	case "routes":
		rows, err := a.routes.GetAll(ctx, search, false)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tCODE\tNAME")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.RouteID, r.Code, r.Name)
		}
	case "salesmen":
		rows, err := a.salesmen.GetAll(ctx, search, false)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tCODE\tNAME\tPHONE\tROUTE")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.SalesmanID, r.Code, r.Name, r.Phone, r.RouteName)
		}
	case "suppliers":
		rows, err := a.suppliers.GetAll(ctx, search, false)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tCODE\tNAME\tPHONE\tADDRESS")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.SupplierID, r.Code, r.Name, r.Phone, r.Address)
		}
	case "customers":
		rows, err := a.customers.GetAll(ctx, search, false)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tCODE\tNAME\tPHONE\tROUTE\tSALESMAN")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				r.CustomerID, r.Code, r.Name, r.Phone, r.RouteName, r.SalesmanName)
		}
	default:
		return fmt.Errorf("unknown entity: %s", entity)
	}
	return nil
}
